package request

import (
	"github.com/workmesh/ledger/src/utils/model"
)

type SaveReport struct {
	Report       model.WorkReport    `json:"report"`
	Attestations []model.Attestation `json:"attestations"`
}
