package scenario

import (
	"github.com/roach88/fauxwire/internal/channel"
	"github.com/roach88/fauxwire/internal/entity"
	"github.com/roach88/fauxwire/internal/fault"
)

// Builtin scenario names.
const (
	BuiltinEmpty    = "empty"
	BuiltinStandard = "standard"
	BuiltinDegraded = "degraded"
	BuiltinOffline  = "offline"
	BuiltinHang     = "hang"
)

// BuiltinNames lists the builtin catalog in presentation order.
var BuiltinNames = []string{
	BuiltinEmpty, BuiltinStandard, BuiltinDegraded, BuiltinOffline, BuiltinHang,
}

// builtins returns the builtin catalog. Built fresh on every call so a
// caller mutating a returned scenario cannot poison later loads.
func builtins() map[string]*Scenario {
	return map[string]*Scenario{
		BuiltinEmpty:    emptyScenario(),
		BuiltinStandard: standardScenario(),
		BuiltinDegraded: degradedScenario(),
		BuiltinOffline:  offlineScenario(),
		BuiltinHang:     hangScenario(),
	}
}

// emptyScenario is the clean-slate world: no entities, no session, no
// faults, default channel. Reset loads this.
func emptyScenario() *Scenario {
	return &Scenario{
		Name:        BuiltinEmpty,
		Description: "clean slate: no entities, no faults, default channel",
	}
}

// standardScenario is a small healthy world with fixed ids, suitable for
// golden-file assertions.
func standardScenario() *Scenario {
	return &Scenario{
		Name:        BuiltinStandard,
		Description: "small healthy dataset with an authenticated admin",
		Entities: Entities{
			Users: []entity.User{
				{ID: "user-admin", Username: "admin", Email: "admin@example.com", Role: entity.RoleAdmin, CreatedAt: "2024-01-01T00:00:00Z"},
				{ID: "user-carol", Username: "carol", Email: "carol@example.com", Role: entity.RoleUser, CreatedAt: "2024-01-02T00:00:00Z"},
			},
			Labels: []entity.Label{
				{ID: "label-invoices", Name: "Invoices", Color: "#4f46e5"},
				{ID: "label-receipts", Name: "Receipts", Color: "#059669"},
			},
			Documents: []entity.Document{
				{
					ID: "doc-0001", UserID: "user-admin", Name: "invoice-march.pdf",
					MimeType: "application/pdf", SizeBytes: 48213,
					Content:   "Invoice #2024-031 total due 420.00",
					OCRStatus: entity.OCRCompleted, LabelIDs: []string{"label-invoices"},
					CreatedAt: "2024-03-01T09:00:00Z", UpdatedAt: "2024-03-01T09:05:00Z",
				},
				{
					ID: "doc-0002", UserID: "user-admin", Name: "receipt-cafe.jpg",
					MimeType: "image/jpeg", SizeBytes: 20341,
					Content:   "Cafe Luna receipt 12.50",
					OCRStatus: entity.OCRCompleted, LabelIDs: []string{"label-receipts"},
					CreatedAt: "2024-03-02T10:00:00Z", UpdatedAt: "2024-03-02T10:01:00Z",
				},
				{
					ID: "doc-0003", UserID: "user-carol", Name: "scan-untitled.png",
					MimeType: "image/png", SizeBytes: 104230,
					OCRStatus: entity.OCRPending,
					CreatedAt: "2024-03-03T11:00:00Z", UpdatedAt: "2024-03-03T11:00:00Z",
				},
			},
			Sources: []entity.Source{
				{
					ID: "source-nas", UserID: "user-admin", Name: "Office NAS",
					SourceType: entity.SourceWebDAV, Enabled: true, Status: entity.SourceIdle,
					LastSyncAt: "2024-03-01T06:00:00Z", TotalFilesSynced: 120, TotalSizeBytes: 5242880,
				},
			},
			Queue: &entity.QueueStats{
				PendingCount:   1,
				CompletedCount: 2,
				AvgWaitSeconds: 3.5,
			},
		},
		Session: &entity.Session{UserID: "user-admin", Username: "admin", Role: entity.RoleAdmin},
		Channel: &channel.Config{
			AutoConnect:         true,
			HeartbeatIntervalMs: 30000,
			Seed:                1,
		},
	}
}

// degradedScenario layers latency, intermittent failure, and message loss
// on top of the standard dataset.
func degradedScenario() *Scenario {
	sc := standardScenario()
	sc.Name = BuiltinDegraded
	sc.Description = "standard dataset under high latency, failures, and message loss"
	sc.Faults = map[fault.Domain]fault.Config{
		fault.Documents: {Delay: fault.DelayMs(400)},
		fault.Search:    {Delay: fault.DelayMs(800)},
		fault.Sources:   {ShouldFail: true, ErrorCode: 503, ErrorMessage: "source backend unavailable"},
	}
	sc.Channel = &channel.Config{
		AutoConnect:          true,
		AutoReconnect:        true,
		ReconnectDelayMs:     1000,
		MaxReconnectAttempts: 5,
		HeartbeatIntervalMs:  30000,
		MessageDelayMs:       200,
		MessageLossPercent:   10,
		Seed:                 1,
	}
	return sc
}

// offlineScenario fails every domain and leaves the channel down.
func offlineScenario() *Scenario {
	faults := make(map[fault.Domain]fault.Config, len(fault.AllDomains))
	for _, d := range fault.AllDomains {
		faults[d] = fault.Config{ShouldFail: true, ErrorCode: 503, ErrorMessage: "service unavailable"}
	}
	return &Scenario{
		Name:        BuiltinOffline,
		Description: "backend unreachable: every domain fails, channel stays down",
		Faults:      faults,
	}
}

// hangScenario makes the document and search domains never respond,
// for exercising caller-side timeouts and cancellation.
func hangScenario() *Scenario {
	sc := standardScenario()
	sc.Name = BuiltinHang
	sc.Description = "standard dataset, but documents and search never respond"
	sc.Faults = map[fault.Domain]fault.Config{
		fault.Documents: {Delay: fault.InfiniteDelay()},
		fault.Search:    {Delay: fault.InfiniteDelay()},
	}
	return sc
}
