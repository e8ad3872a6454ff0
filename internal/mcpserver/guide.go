package mcpserver

// QueryGuide describes how to query seekr effectively. It is served as the
// seekr://query-guide resource.
const QueryGuide = `# seekr Query Guide

seekr indexes local directories ("collections") as chunks of roughly 300
tokens and ranks them for a query.

## Modes

- ` + "`lexical`" + `: every whitespace-separated word must appear literally in the
  chunk. Best for identifiers, error messages and exact phrases.
- ` + "`vector`" + `: semantic similarity between the query and chunk embeddings.
  Returns nothing until the embedding pass has run.
- ` + "`hybrid`" + ` (default): 0.4 * lexical + 0.6 * vector. Falls back to lexical
  ranking when the embedding provider is unavailable.

## Scores

All scores are in [0, 1]. Lexical scores are relative to the best hit of the
same query, so compare them only within one result list.

## Tips

1. Use ` + "`min_score`" + ` to drop weak matches (around 0.5 works for vector mode).
2. Narrow with ` + "`collection`" + ` when you know where the answer lives.
3. Each result carries a path and line range; call ` + "`get_document`" + ` to read the
   surrounding chunks.
`
