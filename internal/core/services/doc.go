// Package services holds the protokoll pipeline and the driving-port
// implementations built on it.
//
// The pipeline stages are EntryParser and TimelineAssembler (parse),
// EntryAnalyzer with CorpusIndex (analyze) and InsightsSynthesizer. All
// model traffic goes through ModelInvoker for retries and throttling and
// through StructuredCorrector for JSON decoding and repair. RunService
// ties the stages to a RunStore; SettingsService and CorpusService back
// the settings and corpus commands.
package services
