// Package synbiohub fetches SBOL documents and attachments from a
// SynBioHub-compatible registry.
//
// # URL Validation
//
// Every URL is checked before a request is made. Unless private access is
// allowed, URLs must use HTTPS and must not point at localhost, .local or
// .internal domains, or private IP ranges. Resolved addresses are checked
// again at dial time and on every redirect to defeat DNS rebinding.
//
// # Limits
//
// Requests share a token-bucket rate limiter, carry a client timeout on top
// of the caller's context, and bodies are capped at a maximum size.
//
// # Usage
//
//	client, err := synbiohub.NewClient(synbiohub.Config{
//	    URL:     "https://synbiohub.org",
//	    Timeout: 30 * time.Second,
//	})
//	doc, err := client.FetchDocument(ctx, "https://synbiohub.org/public/Eco1C1G1T1/Eco1C1G1T1_collection/1")
package synbiohub
