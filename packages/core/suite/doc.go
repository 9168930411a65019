// Package suite defines the YAML format of hitmatch suites.
//
// A suite is a list of checks. A request check sends one HTTP request and
// applies response matchers to it:
//
//	checks:
//	  - name: create issue
//	    request:
//	      method: POST
//	      url: /issues
//	      body: {title: "crash"}
//	    expect:
//	      status: created
//	      json: {id: ~}
//	    capture:
//	      issueId: id
//
// An inclusion check runs the inclusion matcher against a subject reached
// over HTTP or backed by a SQLite table:
//
//	checks:
//	  - name: state is constrained
//	    inclusion:
//	      attribute: state
//	      in: [open, closed]
//	      subject:
//	        sqlite: {database: "sqlite::memory:", setup: "...", table: issues}
package suite
