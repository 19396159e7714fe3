package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	types "github.com/Apurer/secondhand-market/internal/domains/orders/application/types"
)

type normalizedCreateOrderInput struct {
	BuyerID   int64  `json:"buyerId"`
	ProductID int64  `json:"productId"`
	Quantity  int32  `json:"quantity"`
	Remark    string `json:"remark"`
}

// FingerprintCreateOrder builds a deterministic hash of the create-order request
// (excluding the idempotency key). An omitted quantity hashes like quantity 1.
func FingerprintCreateOrder(input types.CreateOrderInput, quantity int32) (string, error) {
	payload, err := json.Marshal(normalizedCreateOrderInput{
		BuyerID:   input.BuyerID,
		ProductID: input.ProductID,
		Quantity:  quantity,
		Remark:    strings.TrimSpace(input.Remark),
	})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
