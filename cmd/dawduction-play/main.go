package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/Niftys/dawduction"
	"github.com/Niftys/dawduction/cmd"
	"github.com/Niftys/dawduction/engine"
	"github.com/Niftys/dawduction/oto"
	"github.com/Niftys/dawduction/synth"
	"github.com/Niftys/dawduction/version"
)

func main() {
	stdout := flag.Bool("s", false, "Do not write files; write to standard output instead.")
	help := flag.Bool("h", false, "Show help.")
	directory := flag.String("o", "", "Directory where to output all files. The directory and its parents are created if needed. By default, everything is placed in the same directory where the original project file is.")
	play := flag.Bool("p", false, "Play the input projects (default behaviour when no other output is defined).")
	live := flag.Bool("live", false, "Play the project loop live through the engine instead of rendering it first. Runs until interrupted.")
	loops := flag.Int("l", 1, "Number of times to render the loop.")
	sampleRate := flag.Int("rate", 44100, "Sample rate in Hz.")
	rawOut := flag.Bool("r", false, "Output the rendered project as .raw file. By default, saves stereo float32 buffer to disk.")
	wavOut := flag.Bool("w", false, "Output the rendered project as .wav file. By default, saves stereo float32 buffer to disk.")
	pcm := flag.Bool("c", false, "Convert audio to 16-bit signed PCM when outputting.")
	initFlag := flag.Bool("init", false, "Write a starter project to each given path and exit.")
	listPresets := flag.Bool("presets", false, "List the available instrument presets and exit.")
	presetFlag := flag.String("preset", "", "Apply an instrument preset to a track before playing or rendering, given as trackID=preset name.")
	savePresetFlag := flag.String("savepreset", "", "Save a track's settings as a user preset and exit, given as trackID=preset name.")
	midiPrefix := flag.String("midi", "", "Open the first MIDI input whose name starts with the given prefix; with -live, incoming notes play the track given by -miditrack. An empty prefix with a non-empty -miditrack takes the first device.")
	midiTrack := flag.String("miditrack", "", "Track ID that live MIDI notes are routed to.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	if *listPresets {
		for _, preset := range synth.LoadPresets().List {
			kind, _ := preset.Kind.MarshalText()
			origin := ""
			if preset.User {
				origin = " (user)"
			}
			fmt.Printf("%s [%s]%s\n", preset.Name, kind, origin)
		}
		os.Exit(0)
	}
	if flag.NArg() == 0 || *help {
		flag.Usage()
		os.Exit(0)
	}
	if *initFlag {
		retval := 0
		for _, path := range flag.Args() {
			if err := writeStarterProject(path); err != nil {
				fmt.Fprintf(os.Stderr, "could not write starter project %v: %v\n", path, err)
				retval = 1
			}
		}
		os.Exit(retval)
	}
	if !*rawOut && !*wavOut && !*live {
		*play = true // if the user gives nothing to output, then the default behaviour is just to play the file
	}
	var audioContext dawduction.AudioContext
	if *play || *live {
		var err error
		audioContext, err = oto.NewContext(*sampleRate)
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not acquire oto AudioContext: %v\n", err)
			os.Exit(1)
		}
	}
	process := func(filename string) error {
		output := func(extension string, contents []byte) error {
			if *stdout {
				_, err := os.Stdout.Write(contents)
				return err
			}
			_, name := filepath.Split(filename)
			dir := *directory
			if dir == "" {
				var err error
				dir, err = os.Getwd()
				if err != nil {
					return fmt.Errorf("could not get working directory, specify the output directory explicitly: %v", err)
				}
			}
			name = strings.TrimSuffix(name, filepath.Ext(name)) + extension
			f := filepath.Join(dir, name)
			if err := os.MkdirAll(dir, os.ModePerm); err != nil {
				return fmt.Errorf("could not create output directory %v: %v", dir, err)
			}
			if err := os.WriteFile(f, contents, 0644); err != nil {
				return fmt.Errorf("could not write file %v: %v", f, err)
			}
			return nil
		}
		inputBytes, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("could not read file %v: %v", filename, err)
		}
		project, err := dawduction.ReadProject(bytes.NewReader(inputBytes))
		if err != nil {
			return err
		}
		if *presetFlag != "" {
			if err := applyPreset(&project, *presetFlag); err != nil {
				return err
			}
		}
		if *savePresetFlag != "" {
			return savePreset(&project, *savePresetFlag)
		}
		if *live {
			return playLive(audioContext, project, *sampleRate, *midiPrefix, *midiTrack)
		}
		buffer, err := engine.Render(nil, &project, *sampleRate, *loops)
		if err != nil {
			return fmt.Errorf("render failed: %v", err)
		}
		var playWaiter dawduction.CloserWaiter
		if *play {
			playWaiter = audioContext.Play(buffer.Source())
		}
		if *rawOut {
			raw, err := buffer.Raw(*pcm)
			if err != nil {
				return fmt.Errorf("could not generate .raw file: %v", err)
			}
			if err := output(".raw", raw); err != nil {
				return fmt.Errorf("error outputting .raw file: %v", err)
			}
		}
		if *wavOut {
			wav, err := buffer.Wav(*sampleRate, *pcm)
			if err != nil {
				return fmt.Errorf("could not generate .wav file: %v", err)
			}
			if err := output(".wav", wav); err != nil {
				return fmt.Errorf("error outputting .wav file: %v", err)
			}
		}
		if *play {
			playWaiter.Wait()
		}
		return nil
	}
	retval := 0
	for _, param := range flag.Args() {
		if info, err := os.Stat(param); err == nil && info.IsDir() {
			jsonfiles, err := filepath.Glob(filepath.Join(param, "*.json"))
			if err != nil {
				fmt.Fprintf(os.Stderr, "could not glob the path %v for json files: %v\n", param, err)
				retval = 1
				continue
			}
			ymlfiles, err := filepath.Glob(filepath.Join(param, "*.yml"))
			if err != nil {
				fmt.Fprintf(os.Stderr, "could not glob the path %v for yml files: %v\n", param, err)
				retval = 1
				continue
			}
			files := append(ymlfiles, jsonfiles...)
			for _, file := range files {
				err := process(file)
				if err != nil {
					fmt.Fprintf(os.Stderr, "could not process file %v: %v\n", file, err)
					retval = 1
				}
			}
		} else {
			err := process(param)
			if err != nil {
				fmt.Fprintf(os.Stderr, "could not process file %v: %v\n", param, err)
				retval = 1
			}
		}
	}
	os.Exit(retval)
}

// playLive runs the real-time engine on the project loop until interrupted,
// optionally routing a MIDI input to one track.
func playLive(audioContext dawduction.AudioContext, project dawduction.Project, sampleRate int, midiPrefix, midiTrack string) error {
	broker := engine.NewBroker()
	player := engine.NewPlayer(broker, sampleRate)
	broker.ToEngine <- engine.LoadProject{Project: &project}
	broker.ToEngine <- engine.SetTransport{State: engine.TransportPlay, Seek: true}

	midiContext := cmd.NewMIDIContext(broker)
	defer midiContext.Close()
	if midiTrack != "" {
		midiContext.SetTrack(midiTrack)
		if err := midiContext.Open(midiPrefix); err != nil {
			fmt.Fprintf(os.Stderr, "could not open MIDI input: %v\n", err)
		}
	}

	playWaiter := audioContext.Play(player)
	defer playWaiter.Close()
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	for {
		select {
		case <-interrupt:
			// Ask the engine to shut down and wait until the render thread
			// has acknowledged, so the audio device is not closed under it.
			broker.CloseEngine <- struct{}{}
			engine.TimeoutReceive(broker.FinishedEngine, time.Second)
			return nil
		case notification := <-broker.ToHost:
			switch n := notification.(type) {
			case engine.Alert:
				fmt.Fprintf(os.Stderr, "%s: %s\n", n.Name, n.Message)
			case engine.RenderedAudio:
				broker.PutAudioBuffer(n.Buffer)
			}
		}
	}
}

// applyPreset applies the named instrument preset to one track, given as
// "trackID=preset name". The preset must match the track's instrument kind.
func applyPreset(project *dawduction.Project, spec string) error {
	trackID, name, ok := strings.Cut(spec, "=")
	if !ok {
		return fmt.Errorf("-preset wants trackID=preset name, got %q", spec)
	}
	track := project.TrackByID(trackID)
	if track == nil {
		return fmt.Errorf("no track %q in the project", trackID)
	}
	preset, ok := synth.LoadPresets().ByName(name)
	if !ok {
		return fmt.Errorf("no preset named %q", name)
	}
	if preset.Kind != track.Kind {
		var names []string
		for _, p := range synth.LoadPresets().ForKind(track.Kind) {
			names = append(names, p.Name)
		}
		return fmt.Errorf("preset %q does not fit track %q; presets for its kind: %s", name, trackID, strings.Join(names, ", "))
	}
	track.Settings = make(map[string]float64, len(preset.Settings))
	for k, v := range preset.Settings {
		track.Settings[k] = v
	}
	return nil
}

// savePreset stores one track's current settings as a user preset, given as
// "trackID=preset name".
func savePreset(project *dawduction.Project, spec string) error {
	trackID, name, ok := strings.Cut(spec, "=")
	if !ok {
		return fmt.Errorf("-savepreset wants trackID=preset name, got %q", spec)
	}
	track := project.TrackByID(trackID)
	if track == nil {
		return fmt.Errorf("no track %q in the project", trackID)
	}
	return synth.SaveUserPreset(name, track.Kind, track.Settings)
}

// writeStarterProject writes a small four-track loop to path, as a starting
// point for editing.
func writeStarterProject(path string) error {
	project := starterProject()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return dawduction.WriteProject(f, path, project)
}

func starterProject() dawduction.Project {
	kick := dawduction.Track{
		ID:     "kick",
		Name:   "Kick",
		Kind:   dawduction.Kick,
		Volume: 1,
		Pattern: dawduction.NewBranch(4,
			dawduction.NewLeaf(1, 1, 0),
			dawduction.NewLeaf(1, 1, 0),
			dawduction.NewLeaf(1, 1, 0),
			dawduction.NewLeaf(1, 1, 0),
		),
	}
	snare := dawduction.Track{
		ID:     "snare",
		Name:   "Snare",
		Kind:   dawduction.Snare,
		Volume: 0.8,
		Pattern: dawduction.NewBranch(4,
			dawduction.NewLeaf(1, 0, 0),
			dawduction.NewLeaf(1, 1, 0),
			dawduction.NewLeaf(1, 0, 0),
			dawduction.NewLeaf(1, 1, 0),
		),
	}
	hihat := dawduction.Track{
		ID:     "hihat",
		Name:   "HiHat",
		Kind:   dawduction.HiHat,
		Volume: 0.5,
		Pattern: dawduction.NewBranch(4,
			dawduction.NewBranch(1, dawduction.NewLeaf(1, 1, 0), dawduction.NewLeaf(1, 0.6, 0)),
			dawduction.NewBranch(1, dawduction.NewLeaf(1, 1, 0), dawduction.NewLeaf(1, 0.6, 0)),
			dawduction.NewBranch(1, dawduction.NewLeaf(1, 1, 0), dawduction.NewLeaf(1, 0.6, 0)),
			dawduction.NewBranch(1, dawduction.NewLeaf(1, 1, 0), dawduction.NewLeaf(1, 0.6, 0)),
		),
	}
	bass := dawduction.Track{
		ID:     "bass",
		Name:   "Bass",
		Kind:   dawduction.Bass,
		Volume: 0.7,
		Pattern: dawduction.NewBranch(4,
			dawduction.NewLeaf(3, 0.9, 33),
			dawduction.NewLeaf(1, 0.7, 36),
		),
	}
	return dawduction.Project{
		BPM:              120,
		Tracks:           []dawduction.Track{kick, snare, hihat, bass},
		BaseMeterTrackID: "kick",
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Command line utility for playing and rendering .yml/.json project files.\nUsage: %s [flags] [path ...]\n", os.Args[0])
	flag.PrintDefaults()
}
