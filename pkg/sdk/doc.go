// Package mapdex embeds the mapdex mapping and dataset engine in a Go
// program without running the HTTP service.
//
// A mapping is a named template of typed fields. Rows are plain maps keyed by
// field name; the client validates them against a mapping, stores them as
// datasets and exports datasets as CSV or JSON in the mapping's field order.
//
//	client, _ := mapdex.New(ctx, mapdex.WithSQLite("mapdex.db"))
//	defer client.Close()
//
//	m, _ := client.Mappings().Create(ctx, mapdex.MappingInput{
//	    Name: "Products",
//	    Fields: []mapdex.FieldInput{
//	        {Name: "sku", Label: "SKU", Required: true},
//	        {Name: "contact", Type: mapdex.FieldEmail},
//	    },
//	})
//
//	errs, _ := client.Validate().Row(ctx, m.ID, mapdex.Row{"sku": "A-1", "contact": "nope"})
//
//	ds, _ := client.Datasets().Create(ctx, m.ID, "Spring import", rows)
//	out, _ := client.Datasets().Export(ctx, ds.ID, mapdex.FormatCSV)
package mapdex
