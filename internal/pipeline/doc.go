// Package pipeline threads reads, or pairs of mates, through lazy map and
// filter stages while keeping running statistics.
//
// Every stage is a Source: a pull-based stream whose Next returns the next
// element or io.EOF once exhausted. Stages compose by wrapping one Source in
// another, so a trim -> trim -> filter chain is three adapters deep and
// pulls one element at a time.
//
// With Options.Threads > 1 a stage reads its input in contiguous chunks of
// Options.ChunkSize, processes chunks on a pool of goroutines and hands the
// results back in submission order. Output order and final counters are
// identical to the single-threaded path.
//
// Counters are only complete once the consumer has drained the returned
// Source. Stopping early leaves them counting whatever was consumed so far.
// Call Close on a partially consumed Source to release its workers.
package pipeline
