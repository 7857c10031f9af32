/*
Package halcyon implements the routing, extraction, and
middleware-composition core of an HTTP/1.x server framework.

A route is registered against a `Builder` with a method, a path pattern, and
a handler of (almost) any shape:

	b := halcyon.NewBuilder()
	b.Serve(halcyon.GET("/users/{user}", func(req *halcyon.Request) (string, error) {
		return "user: " + req.PathParams.Get("user"), nil
	}))

	srv, err := b.Build()
	if err != nil {
		log.Fatal(err)
	}
	if err := srv.Bind("localhost", 8080); err != nil {
		log.Fatal(err)
	}
	log.Fatal(srv.Run())

The path pattern uses "{name}" for a named parameter that matches exactly one
path segment and a trailing "/#name" for a wildcard that consumes the rest of
the path. Handlers may declare any parameter list whose types are recognized
extractors (see `Extractor`) and may return any recognized response-like
value (see `IntoResponse`).
*/
package halcyon
