package server

import (
	"fmt"

	"dealtracker/internal/client"
	"dealtracker/internal/misc"
	"dealtracker/internal/model"
)

// PushNotifier delivers price alerts to a User's devices over FCM. Delivery
// is best-effort; the decision engine has already committed its state by the
// time an alert reaches this boundary.
type PushNotifier struct {
	Client client.Client
	Logger logger
}

func (n PushNotifier) SendPriceAlert(
	u model.User, ti model.TrackedItem, current model.PriceSnapshot, last *model.NotificationState, reason alertReason,
) error {
	var fcmTokens []string
	for _, d := range u.Devices {
		if d.FCMToken != "" {
			fcmTokens = append(fcmTokens, d.FCMToken)
		}
	}
	if len(fcmTokens) == 0 {
		n.Logger.Debugf("SendPriceAlert: No Devices with FCM tokens for UserID: %s, skipping alert", u.ID.Hex())
		return nil
	}

	itemName := misc.StringLimit(coalesce(current.Name, ti.Title, ti.Identifier), 48)
	var body string
	switch reason {
	case reasonPriceDrop:
		lastPrice := 0
		if last != nil {
			lastPrice = last.LastPrice
		}
		body = fmt.Sprintf("%s: price dropped from %s to %s",
			itemName, formatPrice(lastPrice), formatPrice(current.FinalPrice))
	default:
		body = fmt.Sprintf("%s is -%d%% off, now %s",
			itemName, current.DiscountPercent, formatPrice(current.FinalPrice))
	}

	fcmReq := client.FCMSendRequest{
		Notification: client.FCMNotification{
			Title:       "Game deal alert!",
			Body:        body,
			ClickAction: "FLUTTER_NOTIFICATION_CLICK",
			Sound:       "default",
		},
		Data: client.FCMData{
			Platform:   string(ti.Platform),
			Identifier: ti.Identifier,
			URL:        current.URL,
		},
		RegistrationIDs: fcmTokens,
	}
	n.Logger.Debugf("SendPriceAlert: FCMSendRequest for UserID: %s, item: %s, req: %+v", u.ID.Hex(), itemName, fcmReq)
	fcmResp, err := n.Client.FCMSendNotification(fcmReq)
	if err != nil {
		return err
	}
	n.Logger.Infof("SendPriceAlert: Sent alert to %d Device(s) for UserID: %s, item: %s, success: %d, failure: %d",
		len(fcmTokens), u.ID.Hex(), itemName, fcmResp.Success, fcmResp.Failure)
	return nil
}

// formatPrice renders a minor-unit price, 0 meaning no listed price.
func formatPrice(p int) string {
	if p <= 0 {
		return "free"
	}
	return fmt.Sprintf("%d.%02d", p/100, p%100)
}
