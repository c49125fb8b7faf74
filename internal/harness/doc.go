// Package harness checks homework reference queries against the slices
// students will actually receive.
//
// A homework set is only fair if every student's slice can answer its
// questions. The harness assigns the homework set to a list of students,
// loads each slice into a sandbox, runs the scenario's queries and evaluates
// assertions on the outcomes.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: exercise3_reference_queries
//	description: "Join questions are answerable for every student"
//	homework_set: hw-exercise3
//	students: [student123, student-1]
//	sample: {prefix: "student-", count: 20}
//	dataset: master.yaml          # optional, relative to the scenario file
//	bounds:                       # optional, defaults to 15-20 per table
//	  students: {min: 15, max: 20}
//	  courses: {min: 15, max: 20}
//	  lecturers: {min: 15, max: 20}
//	queries:
//	  - name: students_per_city
//	    sql: SELECT City, COUNT(*) AS n FROM Students GROUP BY City
//	assertions:
//	  - type: invariants
//	  - type: table_rows
//	    table: Students
//	    min: 15
//	  - type: query_rows
//	    query: students_per_city
//	    min: 1
//
// # Assertion Types
//
//   - invariants: the assignment passes assign.Verify
//   - table_rows: a sandbox table's row count is within [min, max]
//   - query_rows: a query succeeds and its row count is within [min, max]
//   - query_columns: a query succeeds with exactly the listed columns
//   - query_error: a query fails (for statements students must not run)
//
// Omitted min or max bounds are open.
//
// # Golden Traces
//
// Run records, per student, the assignment fingerprint, table sizes and
// each query's row count. RunWithGolden compares that trace, as canonical
// JSON, against testdata/golden/{name}.golden.
package harness
