package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/workmesh/ledger/src/utils/build_info"
	"github.com/workmesh/ledger/src/utils/config"
	"github.com/workmesh/ledger/src/utils/model"
)

// RemoteAttestor forwards reports to an external attestation service and
// returns its vote
type RemoteAttestor struct {
	client *resty.Client
}

func NewRemoteAttestor(config *config.Config) *RemoteAttestor {
	return &RemoteAttestor{
		client: resty.New().
			SetBaseURL(config.Engine.RemoteAttestorUrl).
			SetTimeout(config.Engine.RemoteAttestorTimeout).
			SetHeader("User-Agent", "ledger/"+build_info.Version),
	}
}

func (self *RemoteAttestor) Attest(ctx context.Context, report model.WorkReport) (attestation model.Attestation, err error) {
	resp, err := self.client.R().
		SetContext(ctx).
		SetResult(model.Attestation{}).
		ForceContentType("application/json").
		SetBody(&report).
		SetHeader("Accept", "application/json").
		Post("/v1/attest")
	if err != nil {
		return
	}

	if !resp.IsSuccess() {
		err = fmt.Errorf("attestation request failed with status %d", resp.StatusCode())
		return
	}

	result, ok := resp.Result().(*model.Attestation)
	if !ok {
		err = errors.New("failed to parse attestation response")
		return
	}

	attestation = *result
	attestation.ReportID = report.ID
	return
}
