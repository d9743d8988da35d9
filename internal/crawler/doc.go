// Package crawler implements the decision logic of the crawl: turning a
// fetched page into candidate links and deciding which of them to follow.
//
// # Components
//
//   - Tokenize: splits page text into countable words
//   - Extractor: resolves anchor links against the effective page URL and
//     folds the page's words and link count into the crawl state
//   - TrapDetector: structural heuristics for infinite URL spaces
//     (overlong URLs, query-string families, repeated path segments)
//   - Validator: scheme, scope and extension filtering followed by trap
//     detection, recording the accepted URL and its subdomain
//
// None of these components perform I/O. They share a *model.CrawlState,
// which is safe for concurrent use, so one set of components can serve a
// whole worker pool.
//
// # Usage
//
//	state := model.NewCrawlState()
//	extractor := crawler.NewExtractor(state)
//	validator := crawler.NewValidator(state, crawler.NewTrapDetector(state))
//	for _, link := range extractor.Extract(result) {
//		if validator.IsValid(link) {
//			frontier.AddURL(link)
//		}
//	}
package crawler
