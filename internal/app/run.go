package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/phuslu/log"

	"ryeku/internal/config"
	"ryeku/internal/curation"
	"ryeku/internal/models"
	"ryeku/internal/report"
	"ryeku/internal/session"
)

// Run drives the research workflow interactively over stdin, mirroring the
// stages the desktop shell walks through.
func Run() error {
	cfg, err := config.Load("")
	if err != nil {
		return err
	}
	log.DefaultLogger.Level = log.ParseLevel(cfg.Log.Level)

	ev := newConsoleEvents()
	svc := NewService(cfg, ev, nil)
	ctx := context.Background()
	in := bufio.NewReader(os.Stdin)

	// 1) Topic input + validation
	topic, err := promptTopic(in)
	if err != nil {
		return err
	}
	if err := svc.Session.SubmitTopic(ctx, topic); err != nil {
		return err
	}

	// 2) Source curation
	if err := curateLoop(ctx, in, svc); err != nil {
		return err
	}

	// 3) Generation: wait for the poller to reach a terminal outcome
	for stage := range ev.stages {
		if stage == session.StageReport {
			break
		}
		if stage == session.StageInput {
			return fmt.Errorf("research failed: %s", svc.Session.Snapshot().Error)
		}
	}

	// 4) Report
	printReport(svc)
	return nil
}

func promptTopic(in *bufio.Reader) (models.ResearchTopic, error) {
	var topic models.ResearchTopic

	for {
		fmt.Println("Enter your research topic.")
		fmt.Print("> ")
		line, err := readLine(in)
		if err != nil {
			return topic, err
		}
		if line == "" {
			fmt.Println("Topic must not be empty. Please try again.")
			continue
		}
		topic.Topic = line
		break
	}

	topic.Depth = selectDepth(in)

	fmt.Print("Focus areas (comma-separated, optional): ")
	if line, err := readLine(in); err == nil && line != "" {
		for _, f := range strings.Split(line, ",") {
			if f = strings.TrimSpace(f); f != "" {
				topic.Focus = append(topic.Focus, f)
			}
		}
	}

	fmt.Print("Timeframe (e.g. \"last 5 years\", optional): ")
	if line, err := readLine(in); err == nil {
		topic.Timeframe = line
	}

	topic.SourceTypes = []string{"authoritative", "academic", "industry", "news"}
	return topic, nil
}

func selectDepth(in *bufio.Reader) models.Depth {
	depths := []models.Depth{models.DepthBasic, models.DepthComprehensive, models.DepthExpert}
	for {
		fmt.Println("Research depth:")
		for i, d := range depths {
			fmt.Printf("  %d) %s\n", i+1, d)
		}
		fmt.Print("> ")
		line, err := readLine(in)
		if err != nil {
			return models.DepthComprehensive
		}
		if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(depths) {
			return depths[n-1]
		}
		fmt.Println("Pick 1, 2 or 3.")
	}
}

func curateLoop(ctx context.Context, in *bufio.Reader, svc *Service) error {
	for {
		snap := svc.Session.Snapshot()
		listed := printBuckets(snap)

		fmt.Println("Commands: trust <n> | other <n> | suggest | preview <n> | done | quit")
		fmt.Print("> ")
		line, err := readLine(in)
		if err != nil {
			return err
		}
		cmd, arg, _ := strings.Cut(line, " ")

		switch strings.ToLower(cmd) {
		case "trust", "other":
			src, ok := pick(listed, arg)
			if !ok {
				fmt.Println("No such source.")
				continue
			}
			var moveErr error
			if strings.EqualFold(cmd, "trust") {
				moveErr = svc.Session.MoveToTrusted(src.ID)
			} else {
				moveErr = svc.Session.MoveToOther(src.ID)
			}
			if moveErr != nil {
				fmt.Println(moveErr)
			}
		case "suggest":
			added, err := svc.SuggestSources(ctx)
			if err != nil {
				svc.Session.SetError(err.Error())
				continue
			}
			fmt.Printf("Added %d suggested sources.\n", added)
		case "preview":
			src, ok := pick(listed, arg)
			if !ok {
				fmt.Println("No such source.")
				continue
			}
			pv, err := svc.PreviewSource(ctx, src.URL)
			if err != nil {
				fmt.Printf("Preview failed: %v\n", err)
				continue
			}
			fmt.Printf("%s (%s)\n%s\n", pv.Title, pv.SiteName, pv.Description)
		case "done":
			err := svc.Session.ConfirmSources(ctx)
			if errors.Is(err, curation.ErrNoTrustedSources) {
				fmt.Println(err)
				continue
			}
			return err
		case "quit":
			svc.Session.StartNew()
			return fmt.Errorf("aborted")
		default:
			fmt.Println("Unknown command.")
		}
	}
}

func printBuckets(snap session.State) []models.Source {
	var listed []models.Source
	fmt.Println("\nTrusted sources:")
	for _, s := range snap.Trusted {
		listed = append(listed, s)
		fmt.Printf("  %d) %s (%s, credibility %d)\n", len(listed), s.Title, s.Domain, s.CredibilityScore)
	}
	fmt.Println("Other sources:")
	for _, s := range snap.Other {
		listed = append(listed, s)
		fmt.Printf("  %d) %s (%s, credibility %d)\n", len(listed), s.Title, s.Domain, s.CredibilityScore)
	}
	return listed
}

func pick(listed []models.Source, arg string) (models.Source, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || n < 1 || n > len(listed) {
		return models.Source{}, false
	}
	return listed[n-1], true
}

func printReport(svc *Service) {
	r := svc.Session.Report()
	if r == nil {
		return
	}

	fmt.Println("\nOutline:")
	for _, h := range report.ExtractOutline(r.Content) {
		fmt.Printf("%s- %s\n", strings.Repeat("  ", h.Level-1), h.Text)
	}

	fmt.Println("\n" + r.Content)

	fmt.Println("\nSources:")
	for i, s := range r.Sources {
		fmt.Printf("  [%d] %s (%s)\n", i+1, s.Title, s.URL)
	}
}

func readLine(in *bufio.Reader) (string, error) {
	line, err := in.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// consoleEvents prints session notifications and forwards stage changes so
// Run can wait for the terminal outcome.
type consoleEvents struct {
	stages chan session.Stage
}

func newConsoleEvents() *consoleEvents {
	return &consoleEvents{stages: make(chan session.Stage, 16)}
}

func (e *consoleEvents) StageChanged(stage session.Stage) {
	select {
	case e.stages <- stage:
	default:
	}
}

func (e *consoleEvents) SourcesLoaded(sources []models.Source) {
	fmt.Printf("Found %d candidate sources.\n", len(sources))
}

func (e *consoleEvents) ProgressUpdated(progress int) {
	fmt.Printf("\rGenerating report... %d%%", progress)
	if progress >= 100 {
		fmt.Println()
	}
}

func (e *consoleEvents) ReportReady(*models.Report) {}

func (e *consoleEvents) ErrorChanged(message string) {
	if message != "" {
		fmt.Printf("Error: %s\n", message)
	}
}
