// Command harmonix-render renders one track from the command line and
// writes it as a WAV file, prints it as base64, or plays it.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/hajimehoshi/oto/v2"

	"github.com/satindergrewal/harmonix/internal/audio"
	"github.com/satindergrewal/harmonix/internal/synth"
)

func main() {
	prompt := flag.String("prompt", "", "text prompt (required)")
	duration := flag.Float64("duration", 10, "length in seconds")
	temperature := flag.Float64("temperature", 1.0, "values above 1.0 add noise")
	modifier := flag.String("modifier", "", "style modifier tag, e.g. jazz-lora")
	seed := flag.Uint64("seed", 0, "noise seed (drawn from the clock when omitted)")
	out := flag.String("out", "", "write the WAV file here")
	b64 := flag.Bool("base64", false, "print the WAV as base64 to stdout")
	play := flag.Bool("play", false, "play through the default audio device")
	flag.Parse()

	if *out == "" && !*b64 && !*play {
		*play = true
	}
	if !flagSet(flag.CommandLine, "seed") {
		*seed = uint64(time.Now().UnixNano())
	}

	start := time.Now()
	enc, err := synth.Render(synth.Params{
		Prompt:        *prompt,
		Duration:      *duration,
		Temperature:   *temperature,
		StyleModifier: *modifier,
		Seed:          *seed,
	})
	if err != nil {
		log.Fatalf("render: %v", err)
	}
	log.Printf("Rendered %.1fs %s track (base %.2f Hz, seed %d) in %s",
		enc.Duration, enc.Style, enc.BaseFrequency, enc.Seed, time.Since(start).Round(time.Millisecond))
	if enc.Silent {
		log.Println("Output is silent")
	}

	if *out != "" {
		if err := os.WriteFile(*out, enc.WAV, 0o644); err != nil {
			log.Fatalf("write %s: %v", *out, err)
		}
		log.Printf("Wrote %s (%d bytes)", *out, len(enc.WAV))
	}
	if *b64 {
		fmt.Println(enc.Base64())
	}
	if *play {
		if err := playWAV(enc.WAV, enc.SampleRate); err != nil {
			log.Fatalf("play: %v", err)
		}
	}
}

// flagSet reports whether name was given on the command line, so an explicit
// zero is told apart from the default.
func flagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// playWAV blocks until the mono 16-bit track has played out.
func playWAV(wav []byte, sampleRate int) error {
	pcm, err := audio.PCM(wav)
	if err != nil {
		return err
	}

	ctx, ready, err := oto.NewContext(sampleRate, 1, oto.FormatSignedInt16LE)
	if err != nil {
		return fmt.Errorf("open audio device: %w", err)
	}
	<-ready

	player := ctx.NewPlayer(bytes.NewReader(audio.SamplesToBytes(pcm)))
	defer player.Close()
	player.Play()
	for player.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}
	return player.Err()
}
