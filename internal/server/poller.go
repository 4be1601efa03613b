package server

import (
	"context"
	"time"

	"dealtracker/internal/misc"
	"dealtracker/internal/model"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// fetchPause spaces out requests to the storefront within a cycle.
const fetchPause = 300 * time.Millisecond

// Poller is the background price-check loop. It holds no state between
// cycles: every cycle re-reads the tracked items from storage, so after a
// restart it resumes from the last durable NotificationState.
type Poller struct {
	DB       trackerStore
	Source   priceSource
	Notifier alertNotifier
	Logger   logger
	Warmup   time.Duration
}

type trackerStore interface {
	TrackedItemsFindAll(ctx context.Context) ([]model.TrackedItem, error)
	NotificationStateFind(ctx context.Context, userID primitive.ObjectID, platform model.Platform, identifier string) (model.NotificationState, error)
	NotificationStateUpsert(ctx context.Context, ns model.NotificationState) error
	UserFindByID(ctx context.Context, id string) (model.User, error)
}

type priceSource interface {
	SteamGetApp(appID string, useCache bool) (model.PriceSnapshot, error)
}

type alertNotifier interface {
	SendPriceAlert(u model.User, ti model.TrackedItem, current model.PriceSnapshot, last *model.NotificationState, reason alertReason) error
}

func (p Poller) CheckPricesInInterval(ctx context.Context, ticker *time.Ticker) {
	if p.Warmup > 0 {
		p.Logger.Infof("CheckPricesInInterval: Waiting %v before first price check", p.Warmup)
		time.Sleep(p.Warmup)
	}
	p.checkPrices(ctx)
	for range ticker.C {
		p.checkPrices(ctx)
	}
}

func (p Poller) checkPrices(ctx context.Context) {
	p.Logger.Info("checkPrices: Starting price check cycle")
	tis, err := p.DB.TrackedItemsFindAll(ctx)
	if err != nil {
		p.Logger.Errorf("checkPrices: Error getting all TrackedItems from DB, err: %v", err)
		return
	}
	p.Logger.Infof("checkPrices: Retrieved %d TrackedItem(s) from DB", len(tis))

	// One fetch per distinct item per cycle, shared across subscribers. A nil
	// entry marks a fetch that failed this cycle.
	snapshots := map[string]*model.PriceSnapshot{}
	for _, ti := range tis {
		if ti.Platform != model.PlatformSteam {
			p.Logger.Debugf("checkPrices: Skipping unsupported platform: %s, identifier: %s", ti.Platform, ti.Identifier)
			continue
		}
		key := string(ti.Platform) + ":" + ti.Identifier
		snap, fetched := snapshots[key]
		if !fetched {
			time.Sleep(fetchPause)
			p.Logger.Debugf("checkPrices: Fetching price for Steam AppID: %s", ti.Identifier)
			cur, err := p.Source.SteamGetApp(ti.Identifier, false)
			if err != nil {
				p.Logger.Errorf("checkPrices: Error fetching price for Steam AppID: %s, skipping this cycle, err: %v",
					ti.Identifier, err)
				snapshots[key] = nil
				continue
			}
			snapshots[key] = &cur
			snap = &cur
		}
		if snap == nil {
			continue
		}
		p.processTrackedItem(ctx, ti, *snap)
	}
	p.Logger.Info("checkPrices: Finished price check cycle")
}

func (p Poller) processTrackedItem(ctx context.Context, ti model.TrackedItem, current model.PriceSnapshot) {
	itemName := misc.StringLimit(coalesce(current.Name, ti.Title, ti.Identifier), 48)

	var last *model.NotificationState
	ns, err := p.DB.NotificationStateFind(ctx, ti.UserID, ti.Platform, ti.Identifier)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			p.Logger.Errorf("checkPrices: Error finding NotificationState for UserID: %s, item: %s, err: %v",
				ti.UserID.Hex(), itemName, err)
			return
		}
	} else {
		last = &ns
	}

	d := decide(current, last)
	if d.reason == reasonNone {
		if d.bootstrap {
			if err := p.DB.NotificationStateUpsert(ctx, snapshotState(ti, current)); err != nil {
				p.Logger.Errorf("checkPrices: Error recording baseline NotificationState for UserID: %s, item: %s, err: %v",
					ti.UserID.Hex(), itemName, err)
				return
			}
			p.Logger.Debugf("checkPrices: Recorded baseline for UserID: %s, item: %s, discount: %d%%, price: %d",
				ti.UserID.Hex(), itemName, current.DiscountPercent, current.FinalPrice)
		}
		return
	}
	if suppressedByThreshold(ti, d, current) {
		p.Logger.Debugf("checkPrices: Alert (%s) held back by threshold %d for UserID: %s, item: %s, price: %d",
			d.reason, ti.AlertThreshold, ti.UserID.Hex(), itemName, current.FinalPrice)
		return
	}

	// The new baseline is committed before delivery is attempted: alerts are
	// at-most-once per change, a failed send is not retried.
	if err := p.DB.NotificationStateUpsert(ctx, snapshotState(ti, current)); err != nil {
		p.Logger.Errorf("checkPrices: Error upserting NotificationState for UserID: %s, item: %s, err: %v",
			ti.UserID.Hex(), itemName, err)
		return
	}

	u, err := p.DB.UserFindByID(ctx, ti.UserID.Hex())
	if err != nil {
		p.Logger.Errorf("checkPrices: Error finding User with ID: %s for alert on item: %s, err: %v",
			ti.UserID.Hex(), itemName, err)
		return
	}
	if err := p.Notifier.SendPriceAlert(u, ti, current, last, d.reason); err != nil {
		p.Logger.Errorf("checkPrices: Error sending price alert (%s) to UserID: %s for item: %s, err: %v",
			d.reason, ti.UserID.Hex(), itemName, err)
		return
	}
	p.Logger.Infof("checkPrices: Sent price alert (%s) to UserID: %s for item: %s, discount: %d%%, price: %d",
		d.reason, ti.UserID.Hex(), itemName, current.DiscountPercent, current.FinalPrice)
}

func coalesce(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}
	return ""
}
