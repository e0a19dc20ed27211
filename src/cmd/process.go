package cmd

import (
	"github.com/spf13/cobra"

	"github.com/workmesh/ledger/src/process"
	"github.com/workmesh/ledger/src/utils/logger"
)

func init() {
	RootCmd.AddCommand(processCmd)
}

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Claims pending packages, runs them through the engine and persists the outcomes",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		controller, err := process.NewController(conf)
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
		log.Debug("Finished process command")
		applicationCtxCancel()
		return
	},
}
