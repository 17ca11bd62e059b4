package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		collection := core.NewBaseCollection("vendor_earnings")

		collection.Fields.Add(
			&core.TextField{Name: "booking_id", Required: true},
			&core.TextField{Name: "vendor_id", Required: true},
			&core.TextField{Name: "amount", Required: true},
			&core.TextField{Name: "commission_rate", Required: true},
			&core.TextField{Name: "net_amount", Required: true},
			&core.SelectField{
				Name:      "payment_status",
				Required:  true,
				MaxSelect: 1,
				Values:    []string{"unpaid", "paid"},
			},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		// One earning per booking, enforced at the database level.
		collection.AddIndex("idx_vendor_earnings_booking", true, "booking_id", "")
		collection.AddIndex("idx_vendor_earnings_vendor", false, "vendor_id", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("vendor_earnings")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
