package kernel

import (
	"errors"
	"strings"

	"fulfillment/internal/pkg/errs"
)

// OrderKey addresses one order of one tenant. Order numbers come from Central and are
// only unique per tenant, so every store is keyed by the pair.
type OrderKey struct {
	tenantID string
	orderNo  string
}

func NewOrderKey(tenantID, orderNo string) (OrderKey, error) {
	tenantID = strings.TrimSpace(tenantID)
	orderNo = strings.TrimSpace(orderNo)

	var err error
	if tenantID == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("tenantId"))
	}
	if orderNo == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("orderNo"))
	}
	if err != nil {
		return OrderKey{}, err
	}
	return OrderKey{tenantID: tenantID, orderNo: orderNo}, nil
}

func (k OrderKey) TenantID() string {
	return k.tenantID
}

func (k OrderKey) OrderNo() string {
	return k.orderNo
}

// String is the composite id "tenant:orderNo".
func (k OrderKey) String() string {
	return k.tenantID + ":" + k.orderNo
}

func (k OrderKey) IsZero() bool {
	return k.tenantID == "" || k.orderNo == ""
}
