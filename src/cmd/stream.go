package cmd

import (
	"github.com/spf13/cobra"

	"github.com/workmesh/ledger/src/stream"
	"github.com/workmesh/ledger/src/utils/logger"
)

func init() {
	RootCmd.AddCommand(streamCmd)
}

var streamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Forwards appended receipts from the database notification channel to Redis",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		controller, err := stream.NewController(conf)
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
		log.Debug("Finished stream command")
		applicationCtxCancel()
		return
	},
}
