// chatprobe is a manual test harness for the chat endpoints. It drives the
// same client the front-end mirrors, persisting its session to disk so runs
// can be resumed:
//
//	go run ./cmd/tools/chatprobe -flavor=content-builder -message="add python to my skills"
//	go run ./cmd/tools/chatprobe -flavor=content-builder -save=<pending-id>
//	go run ./cmd/tools/chatprobe -flavor=practice -question="Tell me about a conflict" -message="..."
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/dmaguire/folio/backend/pkg/chatclient"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	baseURL := flag.String("url", "http://localhost:8080", "backend base URL")
	flavor := flag.String("flavor", "content-builder", "chat flavor: content-builder, practice or resume")
	stateDir := flag.String("state", ".chatprobe", "directory holding the persisted session")
	message := flag.String("message", "", "user message to send")
	question := flag.String("question", "", "interview question to answer (practice flavor)")
	role := flag.String("role", "", "target role (practice and resume flavors)")
	company := flag.String("company", "", "target company (resume flavor)")
	jobDesc := flag.String("job", "", "job description (resume flavor)")
	saveID := flag.String("save", "", "pending item ID to save to the CMS")
	discardID := flag.String("discard", "", "pending item ID to discard")
	genQuestions := flag.Bool("questions", false, "generate interview questions for -role / -job")
	clear := flag.Bool("clear", false, "clear the persisted conversation")
	timeout := flag.Duration("timeout", 120*time.Second, "request timeout")

	flag.Parse()

	store, err := chatclient.NewFileStore(*stateDir)
	if err != nil {
		log.Fatalf("failed to open state directory: %v", err)
	}

	client, err := chatclient.New(chatclient.Config{
		BaseURL: *baseURL,
		Flavor:  *flavor,
		Store:   store,
	})
	if err != nil {
		log.Fatalf("failed to create client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if *clear {
		client.ClearChat()
		log.Println("conversation cleared")
	}
	if *question != "" {
		client.SetCurrentQuestion(*question)
	}
	if *role != "" || *company != "" || *jobDesc != "" {
		client.SetResumeTarget(*role, *company, *jobDesc)
	}

	switch {
	case *genQuestions:
		questions, err := client.GenerateQuestions(ctx, *role, *jobDesc, 5)
		if err != nil {
			log.Fatalf("question generation failed: %v", err)
		}
		for i, q := range questions {
			fmt.Printf("%d. %s\n", i+1, q)
		}
		return
	case *saveID != "":
		if err := client.SaveContent(ctx, *saveID); err != nil {
			log.Fatalf("save failed: %v", err)
		}
		log.Printf("saved %s", *saveID)
	case *discardID != "":
		client.DiscardContent(*discardID)
		log.Printf("discarded %s", *discardID)
	case *message != "":
		if err := client.SendMessage(ctx, *message); err != nil {
			log.Fatalf("send failed: %v", err)
		}
	default:
		if !*clear {
			flag.Usage()
			log.Fatal("nothing to do: pass -message, -save, -discard, -questions or -clear")
		}
	}

	printState(client.State())
}

func printState(state chatclient.State) {
	fmt.Println("--- conversation ---")
	for _, m := range state.Messages {
		fmt.Printf("[%s] %s\n", m.Role, m.Content)
	}
	if len(state.Pending) > 0 {
		fmt.Println("--- pending items ---")
		for _, p := range state.Pending {
			line := fmt.Sprintf("%s  %s  %s  %v", p.ID, p.Type, p.Status, p.Data)
			if p.Error != "" {
				line += "  error: " + p.Error
			}
			fmt.Println(line)
		}
	}
	if len(state.Saved) > 0 {
		fmt.Println("--- saved items ---")
		for _, s := range state.Saved {
			fmt.Printf("%s  %s  cms:%s\n", s.ID, s.Type, s.CMSID)
		}
	}
	if state.Feedback != nil {
		fmt.Println("--- feedback ---")
		fmt.Printf("overall %d/10, structure %d, relevance %d, clarity %d\n",
			state.Feedback.OverallScore, state.Feedback.StructureScore,
			state.Feedback.RelevanceScore, state.Feedback.ClarityScore)
		for _, s := range state.Feedback.Suggestions {
			fmt.Println("  - " + s)
		}
	}
	if state.Resume != nil {
		label := "final"
		if state.ResumeProvisional {
			label = "provisional"
		}
		skills := len(state.Resume.Skills.Technical) + len(state.Resume.Skills.Tools) + len(state.Resume.Skills.Soft)
		fmt.Printf("--- resume (%s): %d experience entries, %d skills ---\n",
			label, len(state.Resume.Experience), skills)
	}
	if state.LastError != "" {
		fmt.Println("last error:", state.LastError)
	}
}
