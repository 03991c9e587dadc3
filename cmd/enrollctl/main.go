package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/enrolld/enrolld/internal/application/registrar"
	memoryevents "github.com/enrolld/enrolld/pkg/adapters/events/memory"
	"github.com/enrolld/enrolld/pkg/adapters/metrics/prometheus"
	memorystorage "github.com/enrolld/enrolld/pkg/adapters/storage/memory"
	"github.com/enrolld/enrolld/pkg/domain"
)

const menu = `
--- Enrollment Console ---
1. Add Participant
2. Add Activity
3. Add Prerequisite
4. Register
5. Deregister
6. Show Activity Details
7. Show Participants
8. Undo Last Action
9. Exit`

func main() {
	// The console runs the same core the service does, wired to in-memory
	// adapters and a silent logger.
	manager := registrar.NewManager(
		memorystorage.NewStore(),
		memoryevents.NewInMemoryEventBus(),
		prometheus.NewCollector(),
		registrar.NewValidator(),
		zap.NewNop(),
	)

	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Println(menu)
		choice := prompt(scanner, "Select an option (1-9): ")

		switch choice {
		case "1":
			addParticipant(ctx, manager, scanner)
		case "2":
			addActivity(ctx, manager, scanner)
		case "3":
			addPrerequisite(ctx, manager, scanner)
		case "4":
			register(ctx, manager, scanner)
		case "5":
			deregister(ctx, manager, scanner)
		case "6":
			showActivities(ctx, manager)
		case "7":
			showParticipants(ctx, manager)
		case "8":
			undo(ctx, manager)
		case "9":
			fmt.Println("Exiting.")
			return
		default:
			fmt.Println("Invalid option, choose 1-9.")
		}
	}
}

func prompt(scanner *bufio.Scanner, label string) string {
	fmt.Print(label)
	if !scanner.Scan() {
		// Treat a closed stdin as exit
		fmt.Println()
		os.Exit(0)
	}
	return strings.TrimSpace(scanner.Text())
}

func addParticipant(ctx context.Context, manager *registrar.Manager, scanner *bufio.Scanner) {
	id := prompt(scanner, "Participant id: ")
	name := prompt(scanner, "Name: ")
	address := prompt(scanner, "Address: ")

	p, err := manager.CreateParticipant(ctx, id, name, address)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Printf("Participant %s added.\n", p)
}

func addActivity(ctx context.Context, manager *registrar.Manager, scanner *bufio.Scanner) {
	title := prompt(scanner, "Activity title: ")
	capacityRaw := prompt(scanner, "Capacity: ")

	capacity, err := strconv.Atoi(capacityRaw)
	if err != nil {
		fmt.Println("Capacity must be a number.")
		return
	}

	a, err := manager.CreateActivity(ctx, title, capacity)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Printf("Activity %q added with capacity %d.\n", a.Title, a.Capacity)
}

func addPrerequisite(ctx context.Context, manager *registrar.Manager, scanner *bufio.Scanner) {
	prerequisite := prompt(scanner, "Prerequisite activity: ")
	dependent := prompt(scanner, "Dependent activity: ")

	if err := manager.AddPrerequisite(ctx, prerequisite, dependent); err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Printf("%q must now be completed before %q.\n", prerequisite, dependent)
}

func register(ctx context.Context, manager *registrar.Manager, scanner *bufio.Scanner) {
	id := prompt(scanner, "Participant id: ")
	title := prompt(scanner, "Activity title: ")
	priorityRaw := prompt(scanner, "Priority (blank for 0, lower is more urgent): ")

	priority := 0
	if priorityRaw != "" {
		n, err := strconv.Atoi(priorityRaw)
		if err != nil {
			fmt.Println("Priority must be a number.")
			return
		}
		priority = n
	}

	result, err := manager.Register(ctx, id, title, priority)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	switch result.Placement {
	case domain.PlacementAdmitted:
		fmt.Printf("%s admitted to %q.\n", result.Participant, result.Activity)
	case domain.PlacementPending:
		fmt.Printf("%s queued for %q.\n", result.Participant, result.Activity)
	default:
		fmt.Printf("%s added to the waitlist for %q.\n", result.Participant, result.Activity)
	}
}

func deregister(ctx context.Context, manager *registrar.Manager, scanner *bufio.Scanner) {
	id := prompt(scanner, "Participant id: ")
	title := prompt(scanner, "Activity title: ")

	result, err := manager.Deregister(ctx, id, title)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	if !result.Released {
		fmt.Printf("%s is not admitted to %q; nothing changed.\n", id, title)
		return
	}
	fmt.Printf("%s deregistered from %q.\n", id, title)
	if result.Promoted != "" {
		fmt.Printf("%s promoted from the waitlist.\n", result.Promoted)
	}
}

func showActivities(ctx context.Context, manager *registrar.Manager) {
	summaries, err := manager.ListActivities(ctx)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	if len(summaries) == 0 {
		fmt.Println("No activities yet.")
		return
	}

	for _, summary := range summaries {
		detail, err := manager.ActivityDetail(ctx, summary.Title)
		if err != nil {
			fmt.Println("Error:", err)
			continue
		}
		fmt.Printf("\nActivity: %s (capacity %d)\n", detail.Title, detail.Capacity)
		fmt.Printf("  Admitted: %s\n", formatList(detail.Admitted))
		if len(detail.Pending) > 0 {
			entries := make([]string, len(detail.Pending))
			for i, e := range detail.Pending {
				entries[i] = fmt.Sprintf("%s(p%d)", e.ID, e.Priority)
			}
			fmt.Printf("  Pending:  %s\n", strings.Join(entries, ", "))
		}
		fmt.Printf("  Waitlist: %s\n", formatList(detail.Waitlist))

		prerequisites, err := manager.Prerequisites(ctx, detail.Title)
		if err == nil && len(prerequisites) > 0 {
			fmt.Printf("  Requires: %s\n", strings.Join(prerequisites, ", "))
		}
	}
}

func showParticipants(ctx context.Context, manager *registrar.Manager) {
	participants, err := manager.ListParticipants(ctx)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	if len(participants) == 0 {
		fmt.Println("No participants yet.")
		return
	}
	for _, p := range participants {
		fmt.Printf("  %s <%s>\n", p, p.Address)
	}
}

func undo(ctx context.Context, manager *registrar.Manager) {
	result, err := manager.Undo(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyUndoLog) {
			fmt.Println("No actions to undo.")
			return
		}
		fmt.Println("Error:", err)
		return
	}
	fmt.Printf("Undid %s: %s.\n", result.Action, result.Note)
}

func formatList(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}
