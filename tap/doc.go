// Package tap provides a client for IVOA Table Access Protocol services.
//
// TAP endpoints accept ADQL queries over HTTP and answer with VOTable
// documents. This package implements the three interaction surfaces a
// TAP service exposes:
//
//   - Synchronous queries: one POST, one table back
//   - Asynchronous queries: UWS jobs that are submitted, polled and fetched
//   - VOSI metadata: the service's capabilities and availability documents
//
// # Endpoint Layout
//
// A TAP service hangs all of these off one base URL:
//
//	{base}/sync          # synchronous query execution
//	{base}/async         # UWS job list; POST creates a job
//	{base}/async/{id}    # one job: phase, error, results/result
//	{base}/capabilities  # VOSI capability listing
//	{base}/availability  # VOSI up/down status
//
// # Usage
//
// Run a query and print the result:
//
//	client, err := tap.New("https://reg.g-vo.org/tap")
//	if err != nil {
//	    // bad base URL
//	}
//	table, err := client.Sync(ctx, "SELECT TOP 5 ivoid FROM rr.resource")
//	if err != nil {
//	    // transport failure, or the service's own error message
//	}
//	fmt.Print(table.ToText(0))
//
// Long-running queries go through the job interface instead; RunAsync
// wraps the whole submit, wait, fetch, delete cycle.
package tap
