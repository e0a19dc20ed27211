package cmd

import (
	"github.com/spf13/cobra"

	"github.com/workmesh/ledger/src/api"
	"github.com/workmesh/ledger/src/utils/logger"
)

func init() {
	RootCmd.AddCommand(apiCmd)
}

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Serves the REST interface for packages, reports, receipts and preimages",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		controller, err := api.NewController(conf)
		if err != nil {
			return
		}

		err = controller.Start()
		if err != nil {
			return
		}

		select {
		case <-controller.CtxRunning.Done():
		case <-applicationCtx.Done():
		}

		controller.StopWait()

		return
	},
	PostRunE: func(cmd *cobra.Command, args []string) (err error) {
		log := logger.NewSublogger("root-cmd")
		log.Debug("Finished api command")
		applicationCtxCancel()
		return
	},
}
