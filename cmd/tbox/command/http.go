package command

import (
	"net"
	"net/http"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tboxgraph/tbox/clog"
	tboxhttp "github.com/tboxgraph/tbox/server/http"
)

// NewHTTPCmd serves the query API. The ontology is loaded and materialized
// once at startup; POST /api/v1/materialize re-runs it if more axioms arrive
// through a restart-free config change, but the common deployment is
// load-once, serve-forever.
func NewHTTPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "http",
		Short: "Serve the reasoner query API on the given host and port.",
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

			api := tboxhttp.NewAPI(s)
			ro, _ := cmd.Flags().GetBool("read_only")
			api.SetReadOnly(ro)

			host := viper.GetString(KeyListen)
			phost := host
			if h, port, err := net.SplitHostPort(host); err == nil && h == "" {
				phost = net.JoinHostPort("localhost", port)
			}
			clog.Infof("listening on %s, query API at http://%s/api/v1", host, phost)
			return http.ListenAndServe(host, api)
		},
	}
	cmd.Flags().String("host", "127.0.0.1:64220", "host:port to listen on")
	cmd.Flags().Bool("sparse", false, "use the dirty-row materialization variant")
	cmd.Flags().Bool("read_only", false, "disable re-materialization via HTTP")
	registerLoadFlags(cmd)
	viper.BindPFlag(KeyListen, cmd.Flags().Lookup("host"))
	return cmd
}
