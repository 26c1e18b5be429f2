package forge

// targetBitrateKbps derives the AAC target bitrate from the source bitrates in
// bits per second. The mean keeps a mixed-bitrate book from ballooning to its
// loudest file, and capKbps bounds the result for sources encoded above what
// spoken word needs. Sources without a readable bitrate are ignored; when none
// remain the cap itself is used.
func targetBitrateKbps(bitrates []int64, capKbps int) int {
	var sum int64
	var count int64
	for _, rate := range bitrates {
		if rate <= 0 {
			continue
		}
		sum += rate
		count++
	}
	if count == 0 {
		return capKbps
	}
	mean := int(sum / count / 1000)
	if mean < 1 {
		mean = 1
	}
	if mean > capKbps {
		return capKbps
	}
	return mean
}
