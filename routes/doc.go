// Package routes loads route definition files and registers them on a
// mux.Router.
//
// A definition file lists the router prefix, the model type hierarchy,
// path aliases and the routes in dispatch registration order. YAML, TOML
// and JSON encodings are accepted and selected by file extension:
//
//	prefix: /app/
//	types:
//	  Widget: ""
//	  Gadget: Widget
//	routes:
//	  - pattern: "GET:widget/{Widget widget}/{action}"
//	    options:
//	      classes: [Widget]
//	      handler: widget
//
// LoadFile validates the file; Apply registers it. Fingerprint hashes the
// decoded content and is meant as the version id of cached tables:
//
//	file, err := routes.LoadFile("routes.yaml")
//	if err != nil {
//	    return err
//	}
//	version, err := file.Fingerprint()
//	if err != nil {
//	    return err
//	}
//	_, err = router.LoadCached(ctx, store, "routes", version, file.Builder())
package routes
