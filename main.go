package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"

	"accretion-sim/pkg/simulation"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	modeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
)

func field(label string, value any) string {
	return labelStyle.Render(label+" ") + valueStyle.Render(fmt.Sprint(value))
}

// statusLine formats one report, in the spirit of the planet demo's caption.
func statusLine(st simulation.Stats) string {
	return lipgloss.JoinHorizontal(lipgloss.Top,
		field("tick", st.Tick), "  ",
		field("t", fmt.Sprintf("%.2fs", st.Time)), "  ",
		field("bodies", st.Bodies), "  ",
		field("pairs", st.Pairs), "  ",
		field("merges", fmt.Sprintf("%d/%d", st.Merges, st.TotalMerges)), "  ",
		field("removed", st.Removed), "  ",
		field("|p|", fmt.Sprintf("%.3g", st.Momentum.Len())), "  ",
		field("KE", fmt.Sprintf("%.4g", st.KineticEnergy)), "  ",
		modeStyle.Render(string(st.Mode)),
	)
}

func main() {
	envName := flag.String("env", "planet", "environment name under pkg/assets (planet, balls, chain, pendulum, binary)")
	configPath := flag.String("config", "", "path to a config file; overrides -env")
	ticks := flag.Int("ticks", 600, "ticks to run; 0 runs until interrupted")
	every := flag.Int("report", 60, "print a status line every N ticks")
	mode := flag.String("mode", "", "central gravity update mode: callback or batch")
	engineName := flag.String("engine", "", "engine: chipmunk or euler")
	addPlanets := flag.Int("add", 0, "planets to add at every report (planet scenario)")
	flag.Parse()

	path := *configPath
	if path == "" {
		path = filepath.Join("pkg/assets", fmt.Sprintf("%s.json", *envName))
	}

	cfg, err := simulation.LoadConfig(path)
	if err != nil {
		log.Fatalf("load environment: %v", err)
	}
	if *engineName != "" {
		cfg.Engine = *engineName
	}
	if *mode != "" {
		cfg.UpdateMode = simulation.UpdateMode(*mode)
	}

	sim, err := simulation.NewSimulator(cfg)
	if err != nil {
		log.Fatalf("create simulator: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Println(titleStyle.Render("Gravity Simulation - " + sim.Name))
	report := func(st simulation.Stats) {
		fmt.Println(statusLine(st))
		if *addPlanets > 0 && cfg.Scenario == simulation.ScenarioPlanet {
			if err := sim.AddPlanets(*addPlanets); err != nil {
				log.Printf("add planets: %v", err)
			}
		}
	}
	if err := sim.Run(ctx, *ticks, *every, report); err != nil && ctx.Err() == nil {
		log.Fatal(err)
	}
	fmt.Println(statusLine(sim.Stats()))
}
