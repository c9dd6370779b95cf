// Package remedex embeds the remediation engine in-process.
//
// A Client vectorizes a knowledge base of known incidents and, for an incident
// description or CI pipeline URL, returns the remediations an LLM judged relevant:
//
//	c, err := remedex.New(
//		remedex.WithEmbedder(myEmbedder),
//		remedex.WithLLM(myChatModel),
//		remedex.WithIndexDir("data"),
//	)
//	if err != nil { ... }
//	defer c.Close()
//
//	if _, err := c.Vectorize(ctx); err != nil { ... }
//	report := c.Analyze(ctx, "docker build fails: permission denied")
//
// Without an LLM every scored chunk uses the keyword fallback, so the
// nearest neighbours are still returned with a fixed 0.8 confidence.
package remedex
