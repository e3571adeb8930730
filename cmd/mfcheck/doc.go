// Command mfcheck checks manufactory wiring without writing Go code.
//
// A manifest names types, their lifecycles and their dependencies:
//
//	name: voice
//	types:
//	  - name: focus
//	    lifecycle: primary
//	  - name: player
//	    lifecycle: unloadable
//	    deps:
//	      - type: focus
//	  - name: alerts
//	    lifecycle: unique
//	    deps:
//	      - type: player
//	      - type: metrics
//	        optional: true
//	exports: [alerts, player]
//
// Each type becomes a named producer in a Component, so every startup check
// the manufactory runs on Go code runs on the manifest too: conflicting
// registrations, missing exports, undeclared imports, cycles and failing
// eager productions. A type with "fail: <message>" always fails to produce,
// which shows how a failure propagates to its dependents.
//
// Commands:
//
//	mfcheck validate -m voice.yaml          exit 1 if anything is wrong
//	mfcheck explain  -m voice.yaml -f yaml  types, construction order, problems
//	mfcheck serve    -m voice.yaml          /types, /graph.yaml and /metrics
//
// Settings come from MANUFACTORY_* environment variables and an optional
// .env file (see --env-file).
package main
