package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		collection := core.NewBaseCollection("advance_payments")

		collection.Fields.Add(
			&core.TextField{Name: "booking_id", Required: true},
			&core.TextField{Name: "payer_id", Required: true},
			&core.TextField{Name: "amount", Required: true},
			&core.TextField{Name: "currency", Required: true},
			&core.SelectField{
				Name:      "status",
				Required:  true,
				MaxSelect: 1,
				Values:    []string{"pending", "succeeded", "failed"},
			},
			&core.TextField{Name: "gateway", Required: true},
			&core.TextField{Name: "gateway_id", Required: true},
			&core.JSONField{Name: "gateway_response"},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		// Settlement lookups resolve attempts by the remote order reference.
		collection.AddIndex("idx_advance_payments_gateway_order", false, "gateway, gateway_id", "")
		collection.AddIndex("idx_advance_payments_booking", false, "booking_id", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("advance_payments")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
