// FilePath: cmd/main.go
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	tm "github.com/buger/goterm"
	"github.com/itsatony/pillhub/internal/config"
	"github.com/itsatony/pillhub/internal/server"
	nuts "github.com/vaudience/go-nuts"
)

var logo = []string{
	"    ____  _ ____   __  __      __  ",
	"   / __ \\(_) / /  / / / /_  __/ /_ ",
	"  / /_/ / / / /  / /_/ / / / / __ \\",
	" / ____/ / / /  / __  / /_/ / /_/ /",
	"/_/   /_/_/_/  /_/ /_/\\__,_/_.___/ ",
}

func main() {
	configDir := flag.String("config", "./config", "directory holding config.yaml")
	quiet := flag.Bool("quiet", false, "skip the console banner")
	flag.Parse()

	nuts.InitVersion()
	if !*quiet {
		banner()
	}

	cfg, err := config.LoadFrom(*configDir)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if !*quiet {
		summary(cfg)
	}
	nuts.L.Infof("[Main] Starting PillHub dispenser hub v%s", nuts.GetVersion())

	if err := server.New(cfg).Start(); err != nil {
		nuts.L.Errorf("[Main] Server error: %v", err)
		os.Exit(1)
	}
}

// banner clears the console and draws the logo with the build version
func banner() {
	tm.Clear()
	tm.MoveCursor(1, 1)
	for _, line := range logo {
		tm.Println(tm.Color(line, tm.CYAN))
	}
	tm.Println(tm.Bold("  supplement dispenser hub ") + nuts.GetVersion())
	tm.Println()
	tm.Flush()
}

// summary prints the settings an operator most often needs to confirm
func summary(cfg *config.Config) {
	rows := tm.NewTable(0, 10, 2, ' ', 0)
	fmt.Fprintf(rows, "listen\t%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Fprintf(rows, "store\t%s\n", cfg.Store.Driver)
	fmt.Fprintf(rows, "timezone\t%s\n", cfg.Dispenser.Timezone)
	fmt.Fprintf(rows, "rotations/pill\t%d\n", cfg.Dispenser.RotationsPerPill)
	fmt.Fprintf(rows, "match window\t%s\n", cfg.Dispenser.MatchWindow)
	fmt.Fprintf(rows, "auth\t%t\n", cfg.Auth.Enabled)
	tm.Println(rows)
	tm.Flush()
}
