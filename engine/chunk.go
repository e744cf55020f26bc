package engine

import "github.com/jhd3197/linkweaver/document"

// chunkRuns partitions the run list into [lo, hi) index ranges of roughly
// threshold bytes of text each, cutting only between top-level blocks. This
// bounds per-chunk scan cost on very large documents; because the cap
// enforcer is shared and chunks are processed in document order, the split
// never changes what gets linked.
func chunkRuns(runs []document.Run, threshold int) [][2]int {
	if len(runs) == 0 {
		return nil
	}

	var ranges [][2]int
	lo := 0
	bytes := 0
	for i, run := range runs {
		if bytes >= threshold && i > lo && run.Block != runs[i-1].Block {
			ranges = append(ranges, [2]int{lo, i})
			lo = i
			bytes = 0
		}
		bytes += len(run.Text)
	}
	return append(ranges, [2]int{lo, len(runs)})
}
