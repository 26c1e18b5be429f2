// Command bookforge turns directories of MP3 files into chaptered M4B
// audiobooks: parallel transcode, chapter assembly, size-bounded splitting,
// and tag injection across ID3 and MP4 atom schemes.
package main
