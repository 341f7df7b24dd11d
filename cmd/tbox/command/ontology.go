package command

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cayleygraph/quad"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tboxgraph/tbox/clog"
	"github.com/tboxgraph/tbox/ontology"
	"github.com/tboxgraph/tbox/reasoner"
)

const (
	KeyCapacity = "ontology.capacity"
	KeyFile     = "ontology.file"
	KeyFormat   = "ontology.format"
	KeyListen   = "server.listen"
)

const (
	flagLoad       = "load"
	flagLoadFormat = "load_format"

	// DefaultCapacity bounds the entity universe when no capacity is
	// configured. Matrices cost capacity² bits each, so the default stays
	// modest.
	DefaultCapacity = 4096
)

func registerLoadFlags(cmd *cobra.Command) {
	cmd.Flags().StringP(flagLoad, "i", "", `ontology quad file to load (".gz"/".bz2" supported)`)
	var names []string
	for _, f := range quad.Formats() {
		if f.Reader != nil {
			names = append(names, f.Name)
		}
	}
	sort.Strings(names)
	cmd.Flags().String(flagLoadFormat, "", `quad file format to use for loading instead of auto-detection ("`+strings.Join(names, `", "`)+`")`)
	viper.BindPFlag(KeyFile, cmd.Flags().Lookup(flagLoad))
	viper.BindPFlag(KeyFormat, cmd.Flags().Lookup(flagLoadFormat))
}

func openStore(cmd *cobra.Command, args []string) (*ontology.Store, error) {
	capacity := viper.GetUint32(KeyCapacity)
	if capacity == 0 {
		capacity = DefaultCapacity
	}
	s, err := ontology.NewStore(capacity)
	if err != nil {
		return nil, err
	}
	load := viper.GetString(KeyFile)
	if load == "" && len(args) >= 1 {
		load = args[0]
	}
	if load == "" {
		return s, nil
	}
	typ := viper.GetString(KeyFormat)
	start := time.Now()
	if err := s.Load(load, typ); err != nil {
		s.Close()
		return nil, err
	}
	clog.Infof("loaded %q in %v (%d names, %d quads skipped)",
		load, time.Since(start), s.Namer().Len(), s.Skipped())
	return s, nil
}

func materializeStore(s *ontology.Store, sparse bool) error {
	eng := s.Engine()
	var (
		derived uint64
		err     error
	)
	if sparse {
		derived, err = eng.MaterializeSparse()
	} else {
		derived, err = eng.Materialize()
	}
	if err != nil {
		return err
	}
	clog.Infof("materialized generation %d: %d derived facts, %d cycles",
		eng.Generation(), derived, eng.MaterializationCycles())
	return nil
}

// NewMaterializeCmd loads an ontology, runs materialization once and prints
// the diagnostics counters.
func NewMaterializeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "materialize [file]",
		Short: "Load an ontology and materialize its closure.",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(cmd, args)
			if err != nil {
				return err
			}
			defer s.Close()

			sparse, _ := cmd.Flags().GetBool("sparse")
			if err := materializeStore(s, sparse); err != nil {
				return err
			}
			eng := s.Engine()
			fmt.Printf("derived facts:  %d\n", eng.InferenceCount())
			fmt.Printf("cycles:         %d\n", eng.MaterializationCycles())
			fmt.Printf("state:          %s\n", eng.State())
			return nil
		},
	}
	cmd.Flags().Bool("sparse", false, "use the dirty-row materialization variant")
	registerLoadFlags(cmd)
	return cmd
}

// NewQueryCmd runs a single subsumption, equivalence or characteristic query
// against a freshly materialized ontology.
func NewQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "query <a> <b>",
		Aliases: []string{"qu"},
		Short:   "Materialize an ontology and run one query against it.",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(cmd, nil)
			if err != nil {
				return err
			}
			defer s.Close()
			if err := materializeStore(s, false); err != nil {
				return err
			}

			a := quad.IRI(args[0]).Full()
			b := quad.IRI(args[1]).Full()

			var res bool
			switch {
			case cmd.Flag("equivalent").Changed:
				res, err = s.IsEquivalent(a, b)
			case cmd.Flag("characteristic").Changed:
				flag, _ := cmd.Flags().GetString("characteristic")
				c, ok := reasoner.ParseCharacteristic(flag)
				if !ok {
					return errors.New("unknown characteristic: " + flag)
				}
				res, err = s.HasCharacteristic(a, c)
			default:
				res, err = s.IsSubClassOf(a, b)
			}
			if err != nil {
				return err
			}
			fmt.Println(res)
			return nil
		},
	}
	cmd.Flags().Bool("equivalent", false, "test class equivalence instead of subsumption")
	cmd.Flags().String("characteristic", "", "test a property characteristic of <a> (ignores <b>)")
	registerLoadFlags(cmd)
	return cmd
}
