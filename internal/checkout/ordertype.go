package checkout

import (
	"strings"

	"github.com/angelmondragon/storefront-checkout/pkg/enums"
)

// MapToOrderType converts the dining mode into the order type sent to the
// storefront. A table number always means the order was placed by scanning
// a table code, whatever mode was selected.
func MapToOrderType(mode enums.DiningMode, tableNo string) enums.OrderType {
	if strings.TrimSpace(tableNo) != "" {
		return enums.OrderTypeScanOrder
	}
	switch mode {
	case enums.DiningModeDineIn:
		return enums.OrderTypeDineIn
	case enums.DiningModeDelivery:
		return enums.OrderTypeDelivery
	case enums.DiningModePickup:
		return enums.OrderTypePickup
	default:
		return enums.OrderTypePickup
	}
}
