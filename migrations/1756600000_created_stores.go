package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		collection := core.NewBaseCollection("stores")

		collection.Fields.Add(
			&core.TextField{Name: "vendor_id", Required: true},
			&core.TextField{Name: "store_name", Required: true},
			&core.TextField{Name: "description"},
			&core.TextField{Name: "category"},
			&core.TextField{Name: "address"},
			&core.TextField{Name: "city"},
			&core.TextField{Name: "price_start", Required: true},
			&core.BoolField{Name: "active"},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		collection.AddIndex("idx_stores_vendor", false, "vendor_id", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("stores")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
