// Copyright (c) 2025 River Szasz
// psqlite - encrypted single-table persistence for SQLite
// This source code is licensed under the MIT license found in the LICENSE file.

// Package cli sets up the command-line interface for psqlite using the
// Cobra library. It defines the root command, the subcommands operating
// on the person store (init, add, get, list, clear, rename), flags, and
// the main entry point for execution.
package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/River-Szasz/psqlite-sqlcipher/internal/config"
	"github.com/River-Szasz/psqlite-sqlcipher/internal/db"
	"github.com/River-Szasz/psqlite-sqlcipher/internal/logging"
	"github.com/River-Szasz/psqlite-sqlcipher/internal/model"
)

var cfgFile string

// Execute builds and runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "psqlite",
		Short:         "Typed, optionally encrypted single-table SQLite store",
		Long:          "psqlite manages a schema-described person table in a single SQLite file,\noptionally encrypted with a passphrase (SQLCipher).",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: user config dir)")
	cmd.PersistentFlags().String("db", "", "database file path")
	cmd.PersistentFlags().Bool("encrypted", false, "open the database under a passphrase")
	cmd.PersistentFlags().Bool("mocked", false, "run against the in-memory backend")
	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	cmd.AddCommand(
		newInitCmd(),
		newAddCmd(),
		newGetCmd(),
		newListCmd(),
		newClearCmd(),
		newRenameCmd(),
		newSaveConfigCmd(),
	)
	return cmd
}

// openStore loads configuration, resolves the passphrase if needed and
// opens the person store, ensuring the table exists.
func openStore(cmd *cobra.Command) (*db.Handle, error) {
	cfg, err := config.Load(cmd, cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logging.SetDebug(cfg.Debug)
	db.SetDebug(cfg.Debug)

	schema, err := model.PersonSchema()
	if err != nil {
		return nil, err
	}

	passphrase := ""
	if cfg.Database.Encrypted && !cfg.Database.Mocked {
		passphrase, err = resolvePassphrase()
		if err != nil {
			return nil, err
		}
	}

	handle, err := db.Open(schema, db.Options{
		Path:       cfg.Database.Path,
		Passphrase: passphrase,
		Mocked:     cfg.Database.Mocked,
	})
	if err != nil {
		if errors.Is(err, db.ErrWrongPassphrase) {
			return nil, fmt.Errorf("cannot open %s: wrong passphrase or not a psqlite database", cfg.Database.Path)
		}
		return nil, err
	}
	if err := handle.EnsureSchema(cmd.Context()); err != nil {
		_ = handle.Close()
		return nil, err
	}
	return handle, nil
}

// resolvePassphrase reads the passphrase from PSQLITE_PASSPHRASE, or
// prompts on the terminal without echo.
func resolvePassphrase() (string, error) {
	if p := os.Getenv("PSQLITE_PASSPHRASE"); p != "" {
		return p, nil
	}
	fmt.Fprint(os.Stderr, "Passphrase: ")
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read passphrase: %w", err)
	}
	if len(raw) == 0 {
		return "", errors.New("empty passphrase")
	}
	return string(raw), nil
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the database file and the person table",
		RunE: func(cmd *cobra.Command, args []string) error {
			handle, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = handle.Close() }()
			logging.Infof("initialized %s", handle.Path())
			return nil
		},
	}
}

func newAddCmd() *cobra.Command {
	var id, name, lastName string
	var age int64
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Insert a person",
		RunE: func(cmd *cobra.Command, args []string) error {
			if id == "" {
				id = uuid.NewString()
			}
			handle, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = handle.Close() }()

			p := model.Person{ID: id, Name: name, LastName: lastName, Age: age}
			if err := handle.Insert(cmd.Context(), p.ToRecord()); err != nil {
				if errors.Is(err, db.ErrDuplicate) {
					return fmt.Errorf("person %q already exists", id)
				}
				return err
			}
			fmt.Println(id)
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "record id (generated when omitted)")
	cmd.Flags().StringVar(&name, "name", "", "first name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "last name")
	cmd.Flags().Int64Var(&age, "age", 0, "age in years")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Fetch a person by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			handle, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = handle.Close() }()

			rec, err := handle.GetByID(cmd.Context(), db.Text(args[0]))
			if err != nil {
				if errors.Is(err, db.ErrNotFound) {
					return fmt.Errorf("no person with id %q", args[0])
				}
				return err
			}
			printPerson(model.PersonFromRecord(rec))
			return nil
		},
	}
}

func newListCmd() *cobra.Command {
	var where []string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List persons, optionally filtered",
		Long:  "List persons. Filters AND-combine and use the form column<op>value,\ne.g. --where 'age>=30' --where 'lastName=Doe'.",
		RunE: func(cmd *cobra.Command, args []string) error {
			handle, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = handle.Close() }()

			filters, err := parseFilters(handle.Schema(), where)
			if err != nil {
				return err
			}
			recs, err := handle.Query(cmd.Context(), filters...)
			if err != nil {
				return err
			}
			for _, rec := range recs {
				printPerson(model.PersonFromRecord(rec))
			}
			logging.Debugf("listed %d persons", len(recs))
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&where, "where", nil, "filter, e.g. 'age>30' (repeatable)")
	return cmd
}

func newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all persons (keeps the table)",
		RunE: func(cmd *cobra.Command, args []string) error {
			handle, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = handle.Close() }()
			return handle.Clear(cmd.Context())
		},
	}
}

func newRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <new-path>",
		Short: "Rebind the store to a new file path and reopen it there",
		RunE: func(cmd *cobra.Command, args []string) error {
			handle, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = handle.Close() }()

			handle.Rename(args[0])
			if err := handle.Reopen(cmd.Context()); err != nil {
				return err
			}
			if err := handle.EnsureSchema(cmd.Context()); err != nil {
				return err
			}
			logging.Infof("store now at %s", handle.Path())
			return nil
		},
	}
}

func newSaveConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save-config",
		Short: "Write the effective configuration to the user config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd, cfgFile)
			if err != nil {
				return err
			}
			if err := config.Write(&cfg); err != nil {
				return err
			}
			logging.Infof("config saved")
			return nil
		},
	}
}

func printPerson(p model.Person) {
	fmt.Printf("%s\t%s %s\t%d\n", p.ID, p.Name, p.LastName, p.Age)
}

// filterOps is checked longest token first so ">=" wins over ">".
var filterOps = []struct {
	token string
	op    db.Op
}{
	{">=", db.OpGe},
	{"<=", db.OpLe},
	{"!=", db.OpNe},
	{"<>", db.OpNe},
	{"=", db.OpEq},
	{">", db.OpGt},
	{"<", db.OpLt},
}

// parseFilters turns --where expressions into typed filters, using the
// schema to pick the value type per column.
func parseFilters(schema *db.TableSchema, exprs []string) ([]db.Filter, error) {
	filters := make([]db.Filter, 0, len(exprs))
	for _, expr := range exprs {
		f, err := parseFilter(schema, expr)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return filters, nil
}

func parseFilter(schema *db.TableSchema, expr string) (db.Filter, error) {
	for _, cand := range filterOps {
		idx := strings.Index(expr, cand.token)
		if idx <= 0 {
			continue
		}
		column := strings.TrimSpace(expr[:idx])
		raw := strings.TrimSpace(expr[idx+len(cand.token):])
		value, err := parseFilterValue(schema, column, raw)
		if err != nil {
			return db.Filter{}, err
		}
		return db.Filter{Column: column, Op: cand.op, Value: value}, nil
	}
	return db.Filter{}, fmt.Errorf("cannot parse filter %q (expected column<op>value)", expr)
}

func parseFilterValue(schema *db.TableSchema, column, raw string) (db.Value, error) {
	col, ok := schema.Column(column)
	if !ok {
		// Let the store produce its own unknown-column error so the CLI
		// and library agree on wording.
		return db.Text(raw), nil
	}
	switch col.Type {
	case db.TypeInteger:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return db.Value{}, fmt.Errorf("filter on %q: %q is not an integer", column, raw)
		}
		return db.Int(n), nil
	case db.TypeReal:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return db.Value{}, fmt.Errorf("filter on %q: %q is not a number", column, raw)
		}
		return db.Real(f), nil
	default:
		return db.Text(raw), nil
	}
}
