package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bldr/pkg/artifact"
	"github.com/matzehuels/bldr/pkg/errors"
)

// versionsCommand creates the versions command.
func (c *CLI) versionsCommand() *cobra.Command {
	var pick bool
	cmd := &cobra.Command{
		Use:   "versions <group:artifact>",
		Short: "List the published versions of an artifact",
		Example: `  bldr versions org.testng:testng
  bldr resolve $(bldr versions org.testng:testng --pick)`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runVersions(cmd.Context(), args[0], pick)
		},
	}
	cmd.Flags().BoolVar(&pick, "pick", false, "choose a version interactively and print its coordinate")
	return cmd
}

func (c *CLI) runVersions(ctx context.Context, arg string, pick bool) error {
	co, err := artifact.ParseCoordinate(arg)
	if err != nil {
		return err
	}
	client, store, err := c.newMavenClient(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	versions, err := client.Versions(ctx, co.Group, co.Name)
	if err != nil {
		return err
	}
	if len(versions) == 0 {
		printInfo("No versions of %s", co.ID())
		return nil
	}
	if pick {
		v, err := pickVersion(co.ID(), versions)
		if err != nil || v == "" {
			return err
		}
		fmt.Println(co.ID() + ":" + v)
		return nil
	}
	for _, v := range versions {
		fmt.Println(v)
	}
	printDetail("%s versions of %s", StyleNumber.Render(fmt.Sprint(len(versions))), co.ID())
	return nil
}

// existsCommand creates the exists command. It fails when the artifact
// is not published.
func (c *CLI) existsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "exists <group:artifact:version>",
		Short:   "Check whether an artifact version is published",
		Example: `  bldr exists org.testng:testng:7.1.0`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExists(cmd.Context(), args[0])
		},
	}
}

func (c *CLI) runExists(ctx context.Context, arg string) error {
	co, err := artifact.ParseCoordinate(arg)
	if err != nil {
		return err
	}
	if !co.Version.IsSpecified() {
		return errors.New(errors.ErrCodeInvalidCoordinate, "%s: version is required", arg)
	}
	client, store, err := c.newMavenClient(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	ok, err := client.Exists(ctx, co.Group, co.Name, co.Version.String())
	if err != nil {
		return err
	}
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "%s is not published", co.String())
	}
	printSuccess("%s exists", co.String())
	return nil
}
