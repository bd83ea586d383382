// Package voice turns speech-to-text transcripts into dog commands.
//
// Transcripts from a recognizer are noisy: "앉자" instead of "앉아", "sitt"
// instead of "sit". The Matcher splits a transcript into words and picks the
// closest known command word by Levenshtein distance, then maps that word to
// its canonical command.
//
// # Commands
//
// Three commands are recognized, each with aliases:
//
//   - 앉아 (Sit): 앉아, 앉기, sit
//   - 손 (Hand): 손, 손줘, paw, hand, shake
//   - 엎드려 (Down): 엎드려, 누워, 다운, down, lie
//
// # Usage
//
//	m := voice.NewMatcher(voice.DefaultConfig())
//
//	res, ok := m.Normalize("강아지야 앉자!")
//	if ok {
//	    fmt.Println(res.Command) // 앉아
//	}
//
// # Recording
//
// Recordings shorter than Config.MinRecordDuration are rejected before they
// reach the recognizer. Recorder tracks one push-to-talk session at a time.
package voice
