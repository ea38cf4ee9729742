// Package harness runs YAML conformance scenarios for denial constraints.
//
// A scenario names one constraint and states what translating it must
// produce: the exact SQL, an error, or, given inline CSV data, the number
// of violating tuple pairs. Each scenario runs against a fresh in-memory
// workspace with a fixed run ID, so results and golden snapshots are
// reproducible.
//
// Example scenario:
//
//	name: airport_timezone
//	description: Airports in one country share a timezone
//	constraint: "¬(t0.airport.Country==t1.airport.Country^t0.airport.Timezone<>t1.airport.Timezone)"
//	options:
//	  format_output: false
//	data:
//	  table: airport.csv
//	  csv: |
//	    Country,Timezone
//	    US,EST
//	    US,PST
//	expect:
//	  violations: 2
package harness
