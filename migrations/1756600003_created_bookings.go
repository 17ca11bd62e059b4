package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		collection := core.NewBaseCollection("bookings")

		collection.Fields.Add(
			&core.TextField{Name: "event_id", Required: true},
			&core.TextField{Name: "store_id", Required: true},
			&core.TextField{Name: "service_id"},
			&core.TextField{Name: "customer_id", Required: true},
			&core.TextField{Name: "vendor_id", Required: true},
			&core.TextField{Name: "amount", Required: true},
			&core.TextField{Name: "advance_percentage", Required: true},
			&core.TextField{Name: "advance_required", Required: true},
			&core.TextField{Name: "advance_paid", Required: true},
			&core.SelectField{
				Name:      "status",
				Required:  true,
				MaxSelect: 1,
				Values:    []string{"pending", "confirmed", "in_progress", "completed", "cancelled"},
			},
			&core.DateField{Name: "booking_date"},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		collection.AddIndex("idx_bookings_customer", false, "customer_id", "")
		collection.AddIndex("idx_bookings_vendor", false, "vendor_id", "")
		collection.AddIndex("idx_bookings_event", false, "event_id", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("bookings")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
