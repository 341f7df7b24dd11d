package command

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/cayleygraph/quad"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/tboxgraph/tbox/ontology"
	"github.com/tboxgraph/tbox/reasoner"
)

const (
	ps1 = "tbox> "

	history = ".tbox_history"
)

// NewReplCmd drops into an interactive session against a live store: assert
// axioms, materialize, query.
func NewReplCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Drop into an interactive reasoner session.",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(cmd, args)
			if err != nil {
				return err
			}
			defer s.Close()
			return repl(s)
		},
	}
	registerLoadFlags(cmd)
	return cmd
}

func repl(s *ontology.Store) error {
	term, err := terminal(history)
	if os.IsNotExist(err) {
		fmt.Printf("creating new history file: %q\n", history)
	}
	defer persist(term, history)

	for {
		line, err := term.Prompt(ps1)
		if err != nil {
			if err == io.EOF {
				fmt.Println()
				return nil
			}
			return err
		}

		term.AppendHistory(line)

		line = strings.TrimSpace(line)
		if len(line) == 0 || line[0] == '#' {
			continue
		}

		cmd, args := splitLine(line)
		if err := evalLine(s, cmd, args); err == errReplExit {
			term.Close()
			return nil
		} else if err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	}
}

var errReplExit = fmt.Errorf("exit")

func evalLine(s *ontology.Store, cmd string, args []string) error {
	term := func(i int) quad.Value { return quad.IRI(args[i]).Full() }
	eng := s.Engine()
	switch cmd {
	case ":a":
		if len(args) != 2 {
			return fmt.Errorf("usage: :a <child> <parent>")
		}
		child, err := s.Namer().Intern(term(0))
		if err != nil {
			return err
		}
		parent, err := s.Namer().Intern(term(1))
		if err != nil {
			return err
		}
		return eng.AddSubClassOf(child, parent)

	case ":e":
		if len(args) != 2 {
			return fmt.Errorf("usage: :e <a> <b>")
		}
		a, err := s.Namer().Intern(term(0))
		if err != nil {
			return err
		}
		b, err := s.Namer().Intern(term(1))
		if err != nil {
			return err
		}
		return eng.AddEquivalentClass(a, b)

	case ":m", ":ms":
		var (
			derived uint64
			err     error
		)
		if cmd == ":ms" {
			derived, err = eng.MaterializeSparse()
		} else {
			derived, err = eng.Materialize()
		}
		if err != nil {
			return err
		}
		fmt.Printf("generation %d: %d derived facts in %d cycles\n",
			eng.Generation(), derived, eng.MaterializationCycles())
		return nil

	case "sub":
		if len(args) != 2 {
			return fmt.Errorf("usage: sub <a> <b>")
		}
		res, err := s.IsSubClassOf(term(0), term(1))
		if err != nil {
			return err
		}
		fmt.Println(res)
		return nil

	case "eq":
		if len(args) != 2 {
			return fmt.Errorf("usage: eq <a> <b>")
		}
		res, err := s.IsEquivalent(term(0), term(1))
		if err != nil {
			return err
		}
		fmt.Println(res)
		return nil

	case "char":
		if len(args) != 2 {
			return fmt.Errorf("usage: char <property> <flag>")
		}
		c, ok := reasoner.ParseCharacteristic(args[1])
		if !ok {
			return fmt.Errorf("unknown characteristic: %q", args[1])
		}
		res, err := s.HasCharacteristic(term(0), c)
		if err != nil {
			return err
		}
		fmt.Println(res)
		return nil

	case "stats":
		fmt.Printf("state: %s  generation: %d  inferences: %d  cycles: %d  names: %d/%d\n",
			eng.State(), eng.Generation(), eng.InferenceCount(),
			eng.MaterializationCycles(), s.Namer().Len(), eng.Capacity())
		return nil

	case "help":
		fmt.Print(`Help
	:a <child> <parent> // assert subclass edge
	:e <a> <b>          // assert equivalence edge
	:m                  // materialize
	:ms                 // materialize (dirty-row variant)
	sub <a> <b>         // query subsumption
	eq <a> <b>          // query equivalence
	char <p> <flag>     // query property characteristic
	stats               // engine counters
	exit                // exit
`)
		return nil

	case "exit":
		return errReplExit

	default:
		return fmt.Errorf("unknown command: %q", cmd)
	}
}

// splitLine splits a line into a command and its argument fields.
func splitLine(line string) (string, []string) {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) == 0 {
		return "", nil
	}
	return fields[0], fields[1:]
}

func terminal(path string) (*liner.State, error) {
	term := liner.NewLiner()

	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, os.Kill)
		<-c

		err := persist(term, history)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to properly clean up terminal: %v\n", err)
			os.Exit(1)
		}

		os.Exit(0)
	}()

	f, err := os.Open(path)
	if err != nil {
		return term, err
	}
	defer f.Close()
	_, err = term.ReadHistory(f)
	return term, err
}

func persist(term *liner.State, path string) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0666)
	if err != nil {
		return fmt.Errorf("could not open %q to append history: %v", path, err)
	}
	defer f.Close()
	_, err = term.WriteHistory(f)
	if err != nil {
		return fmt.Errorf("could not write history to %q: %v", path, err)
	}
	return term.Close()
}
