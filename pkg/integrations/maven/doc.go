// Package maven talks to a Maven repository and its search index.
//
// # Overview
//
// Two surfaces are used. The repository serves files under the standard
// layout:
//
//	{repo}/{group with slashes}/{artifact}/{version}/{artifact}-{version}.{pom|jar}
//
// The search index is a Solr "gav" core queried with
//
//	{search}/select?q=g:G AND a:A AND v:V&core=gav&wt=xml
//
// whose response carries /response/result/@numFound and one <doc> per hit
// with <str name="g|a|v"> fields.
//
// # Usage
//
//	client, err := maven.NewClient(maven.WithCache(c, 24*time.Hour))
//	if err != nil {
//	    return err
//	}
//
//	ok, err := client.Exists(ctx, "org.testng", "testng", "7.1.0")
//	versions, err := client.Versions(ctx, "org.testng", "testng")
//
// [Client.Versions] preserves the order the server returns; it does not sort.
// A query with no hits yields false or an empty list, never an error.
//
// # Descriptors
//
// [ParsePOM] decodes the parts of a descriptor that resolution needs:
// coordinates, packaging, properties and the dependency list.
// [POM.Expand] resolves ${...} placeholders against the descriptor itself.
//
// # Testing
//
// Package maventest provides an in-memory repository and search index.
package maven
