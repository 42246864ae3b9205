package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"coachlens"
)

func main() {
	var (
		pageURL    = flag.String("url", "", "URL of the page to study")
		inputFile  = flag.String("file", "", "Read page HTML from a file instead of fetching")
		action     = flag.String("action", "quiz", "Action to run (quiz, summarize, analyze)")
		endpoint   = flag.String("endpoint", "http://localhost:8787/api/generate", "Cloud proxy generate endpoint")
		offline    = flag.Bool("offline", false, "Skip the AI backends and use page heuristics only")
		playMode   = flag.Bool("play", false, "Take the generated quiz interactively")
		outputFile = flag.String("output", "", "Output file for JSON results (default: stdout)")
		dbPath     = flag.String("db", "", "Save results to this library database")
		logDir     = flag.String("log-dir", "", "Directory for AI transcript logs")
		verbose    = flag.Bool("verbose", false, "Enable verbose debugging output")
	)

	flag.Parse()

	coachlens.SetVerbose(*verbose)

	if *pageURL == "" && *inputFile == "" {
		log.Fatal("A page is required. Use -url or -file.")
	}

	html, err := loadHTML(*pageURL, *inputFile)
	if err != nil {
		log.Fatalf("Failed to load page: %v", err)
	}

	page, err := coachlens.ExtractPage(*pageURL, html)
	if err != nil {
		log.Fatalf("Failed to extract page content: %v", err)
	}

	if *verbose {
		log.Printf("Extracted %q: %d words, language %s", page.Title, page.WordCount, page.Language)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	var proxy *coachlens.ProxyClient
	if !*offline && *endpoint != "" {
		proxy = coachlens.NewProxyClient(*endpoint)
	}
	router := coachlens.NewRouter(ctx, nil, proxy)
	if *logDir != "" {
		transcript, err := coachlens.NewTranscript(*logDir, "coachlens-cli")
		if err != nil {
			log.Fatalf("Failed to open transcript log: %v", err)
		}
		defer transcript.Close()
		router.SetTranscript(transcript)
	}
	if *verbose {
		log.Printf("AI router mode: %s", router.Mode())
	}

	engine := coachlens.NewEngine(router, nil)

	switch *action {
	case "quiz":
		var quiz []coachlens.QuizItem
		if *offline {
			quiz = engine.HeuristicQuiz(page)
		} else {
			quiz = engine.GenerateQuiz(ctx, page)
		}
		if *dbPath != "" {
			saveToLibrary(*dbPath, coachlens.LibraryItem{
				Type:  coachlens.ItemQuiz,
				Title: page.Title,
				Quiz:  quiz,
				URL:   page.URL,
			})
		}
		if *playMode {
			playQuiz(engine, page, quiz)
			return
		}
		emit(*outputFile, quiz)

	case "summarize":
		summary := engine.Summarize(ctx, page)
		if *dbPath != "" {
			saveToLibrary(*dbPath, coachlens.LibraryItem{
				Type:    coachlens.ItemSummary,
				Title:   page.Title,
				Content: summary,
				URL:     page.URL,
			})
		}
		emit(*outputFile, map[string]string{"summary": summary})

	case "analyze":
		analysis := engine.Analyzer().Analyze(page.Body, page.Title)
		emit(*outputFile, analysis)

	default:
		log.Fatalf("Unknown action %q. Use quiz, summarize, or analyze.", *action)
	}
}

// loadHTML fetches the page over HTTP, or reads it from a local file when
// -file is given.
func loadHTML(pageURL, inputFile string) (string, error) {
	if inputFile != "" {
		data, err := os.ReadFile(inputFile)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Get(pageURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch returned status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func saveToLibrary(dbPath string, item coachlens.LibraryItem) {
	store, err := coachlens.OpenKVStore(dbPath)
	if err != nil {
		log.Fatalf("Failed to open library database: %v", err)
	}
	defer store.Close()

	library := coachlens.NewLibrary(store)
	saved, err := library.SaveItem(item)
	if err != nil {
		log.Fatalf("Failed to save to library: %v", err)
	}
	log.Printf("Saved to library as %s", saved.ID)
}

func emit(outputFile string, v interface{}) {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal output: %v", err)
	}
	if outputFile != "" {
		if err := os.WriteFile(outputFile, output, 0644); err != nil {
			log.Fatalf("Failed to write output file: %v", err)
		}
		log.Printf("Results saved to: %s", outputFile)
		return
	}
	fmt.Println(string(output))
}

func playQuiz(engine *coachlens.Engine, page coachlens.PageContent, quiz []coachlens.QuizItem) {
	fmt.Printf("🎯 Quiz on: %s\n", page.Title)
	fmt.Printf("📝 Questions: %d\n\n", len(quiz))

	scanner := bufio.NewScanner(os.Stdin)
	answers := make([]string, len(quiz))

	for i, item := range quiz {
		fmt.Printf("Question %d/%d:\n%s\n\n", i+1, len(quiz), item.Question)

		if item.Kind == coachlens.KindMultipleChoice {
			letters := []string{"A", "B", "C", "D"}
			for j, option := range item.Options {
				fmt.Printf("%s) %s\n", letters[j], option)
			}
			fmt.Println()

			var pick int
			for {
				fmt.Print("Your answer (A/B/C/D): ")
				scanner.Scan()
				answer := strings.ToUpper(strings.TrimSpace(scanner.Text()))
				pick = strings.Index("ABCD", answer)
				if len(answer) == 1 && pick >= 0 && pick < len(item.Options) {
					break
				}
				fmt.Println("Please enter A, B, C, or D")
			}
			answers[i] = item.Options[pick]
		} else {
			fmt.Print("Your answer: ")
			scanner.Scan()
			answers[i] = strings.TrimSpace(scanner.Text())
		}
		fmt.Println()
	}

	attempts := engine.GradeQuiz(quiz, answers)
	for i, attempt := range attempts {
		item := quiz[i]
		if attempt.Correct {
			fmt.Printf("✅ Question %d: Correct!\n", i+1)
		} else {
			reference := item.CorrectAnswer
			if item.Kind == coachlens.KindFreeText {
				reference = item.ReferenceAnswer
			}
			fmt.Printf("❌ Question %d: Incorrect. Expected: %s\n", i+1, reference)
		}
	}

	result := coachlens.Score(attempts)
	fmt.Printf("\n🏆 Final score: %d/%d (%d%%)\n", result.Score, result.Total, result.Percentage)
}
