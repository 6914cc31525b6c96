package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pageza/foodgram/backend/internal/fixtures"
	"github.com/pageza/foodgram/backend/internal/service"
)

var loadIngredientsCmd = &cobra.Command{
	Use:   "load-ingredients [file]",
	Short: "Import ingredients from a JSON file",
	Long:  `Reads a JSON array of {"name", "measurement_unit"} objects. Existing names are skipped.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLoadIngredients,
}

var loadTagsCmd = &cobra.Command{
	Use:   "load-tags [file]",
	Short: "Import tags from a YAML file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLoadTags,
}

func fileArg(args []string, fallback string) string {
	if len(args) > 0 {
		return args[0]
	}
	return fallback
}

func runLoadIngredients(cmd *cobra.Command, args []string) error {
	path := fileArg(args, "data/ingredients.json")
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	ingredients, err := fixtures.ReadIngredients(f)
	if err != nil {
		return err
	}

	env, err := setup()
	if err != nil {
		return err
	}
	defer env.close()

	inserted, err := service.NewCatalogService(env.db, env.logger).ImportIngredients(cmd.Context(), ingredients)
	if err != nil {
		return err
	}
	cmd.Printf("loaded %d of %d ingredients\n", inserted, len(ingredients))
	return nil
}

func runLoadTags(cmd *cobra.Command, args []string) error {
	path := fileArg(args, "data/tags.yaml")
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	tags, err := fixtures.ReadTags(f)
	if err != nil {
		return err
	}

	env, err := setup()
	if err != nil {
		return err
	}
	defer env.close()

	inserted, err := service.NewCatalogService(env.db, env.logger).ImportTags(cmd.Context(), tags)
	if err != nil {
		return err
	}
	cmd.Printf("loaded %d of %d tags\n", inserted, len(tags))
	return nil
}
