// Package harness runs store scenarios described in YAML.
//
// A scenario loads a record set, performs a sequence of selections on a
// single Store, and checks the outcome of each step and the final state.
// It exercises the aliasing rules end to end: which selections succeed,
// which are rejected, and what every live view sees.
//
// # Scenario Format
//
//	name: scenario_name
//	description: "What this scenario checks"
//	records:                 # inline records, or
//	  - {name: ann, age: 34}
//	source: people.yaml      # a file loaded with the source package
//	steps:
//	  - op: select_mut
//	    as: minors
//	    where: ["age < 18"]
//	    expect: {count: 1}
//	  - op: select
//	    as: all
//	    expect: {error: EXCLUSIVE_HELD}
//	  - op: set
//	    from: minors
//	    set: {minor: true}
//	  - op: release
//	    from: minors
//	assertions:
//	  - type: view_values
//	    view: adults
//	    field: name
//	    values: [ann, cid]
//	  - type: borrowed
//	    shared: 0
//	    exclusive: 0
//	  - type: final_state
//	    where: {name: bob}
//	    expect: {minor: true}
//
// # Step Operations
//
//   - select, select_mut: select from the Store; no where means every record
//   - narrow: narrow the View named by from
//   - narrow_mut: narrow the MutableView named by from, consuming it
//   - filter_two: filter the Views from and with by the same conditions,
//     naming the results as and as_second
//   - release: release the view named by from
//   - set: assign fields on every record of the MutableView named by from
//
// Conditions use the queryir condition syntax and are joined with AND.
//
// # Deterministic Testing
//
// Store IDs come from testutil.IDSequence, so traces are identical across
// runs and can be compared against golden files with RunWithGolden.
package harness
