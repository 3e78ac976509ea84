package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dukex/talentflow/pkg/log"
	"github.com/dukex/talentflow/pkg/modelregistry"
	"github.com/dukex/talentflow/pkg/models"
	"github.com/dukex/talentflow/pkg/validation"
	cli "github.com/urfave/cli/v3"
)

var ErrGraphInvalid = errors.New("graph has blocking validation issues")

func NewValidateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Aliases:   []string{"v"},
		Usage:     "Print the validation issues of a graph document",
		ArgsUsage: "<graph.json>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the issues as JSON",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			path := command.Args().First()
			if path == "" {
				return errors.New("graph document path is required")
			}

			catalog, err := modelregistry.LoadFile(command.String("models-file"))
			if err != nil {
				return err
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read graph document: %w", err)
			}

			var doc models.Graph

			err = json.Unmarshal(data, &doc)
			if err != nil {
				return fmt.Errorf("failed to parse graph document %s: %w", path, err)
			}

			issues, err := validation.New(catalog).ValidateDocument(&doc)
			if err != nil {
				return err
			}

			out := command.Root().Writer

			if command.Bool("json") {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")

				err = encoder.Encode(issues)
				if err != nil {
					return err
				}
			} else {
				for _, issue := range issues {
					fmt.Fprintln(out, issue.String())
				}

				if len(issues) == 0 {
					fmt.Fprintln(out, "graph is valid")
				}
			}

			if models.HasErrors(issues) {
				return ErrGraphInvalid
			}

			return nil
		},
	}
}

func NewModelsCommand() *cli.Command {
	return &cli.Command{
		Name:  "models",
		Usage: "List the automatable models and the events they emit",
		Action: func(_ context.Context, command *cli.Command) error {
			catalog, err := modelregistry.LoadFile(command.String("models-file"))
			if err != nil {
				return err
			}

			out := command.Root().Writer

			for _, model := range catalog.All() {
				events := make([]string, 0, len(model.Events))
				for _, event := range model.Events {
					events = append(events, string(event))
				}

				fmt.Fprintf(out, "%s\t%s\tevents=%s", model.Key, model.DisplayName, strings.Join(events, ","))

				if len(model.Stages) > 0 {
					fmt.Fprintf(out, "\tstages=%s", strings.Join(model.Stages, ","))
				}

				fmt.Fprintln(out)
			}

			return nil
		},
	}
}
