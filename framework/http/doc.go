// Package http holds the JSON response helpers and the read-only inspection
// endpoints of a running application.
//
// # Response
//
//	res := gohttp.NewResponse(w)
//	res.Success(map[string]any{"status": "up"})   // 200 {"data": {...}}
//	res.NotFound("Unknown configuration key.")      // 404 {"message": "..."}
//	res.ValidationError(errs)                       // 422 {"errors": {...}}
//
// # Inspector
//
// Inspector mounts GET /health, /components, /config, /config/{key} and
// /profiles on a routing.Router. It reads the container store and the
// configuration manager and never creates or changes anything:
//
//	r := routing.New(logger)
//	gohttp.NewInspector(c, manager).Routes(r)
package http
