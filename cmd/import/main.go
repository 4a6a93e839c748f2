package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	intconfig "univtours/internal/config"
	intdb "univtours/internal/db"
	"univtours/internal/services"
)

func main() {
	now := time.Now()
	dryRun := flag.Bool("dry-run", false, "analyse le fichier et affiche les effets sans écrire")
	year := flag.Int("year", now.Year(), "année par défaut pour les dates partielles (ex: 13/1)")
	month := flag.Int("month", int(now.Month()), "mois par défaut pour les dates au jour seul")
	source := flag.String("source", "import", "libellé de la source (tracé sur chaque réservation)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <fichier.csv>\n\n", os.Args[0])
		fmt.Fprintln(os.Stderr, "Colonnes attendues: date, payeur, bénéficiaire, ville départ, ville arrivée, référence, montant")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	env := intconfig.LoadEnv()
	intconfig.ConnectDB(env)
	defer intconfig.CloseDB()

	if err := intdb.EnsureSchema(intconfig.DB); err != nil {
		log.Fatalf("Échec de la migration du schéma: %v", err)
	}

	svc := services.ImportService{
		Source: *source,
		Year:   *year,
		Month:  *month,
		DryRun: *dryRun,
	}

	summary, err := svc.ImportFile(path)
	if err != nil {
		log.Fatalf("Échec de l'import: %v", err)
	}

	mode := "import"
	if summary.DryRun {
		mode = "simulation (aucune écriture)"
	}
	fmt.Printf("Mode      : %s\n", mode)
	fmt.Printf("Créées    : %d\n", summary.Created)
	fmt.Printf("Mises à jour : %d\n", summary.Updated)
	fmt.Printf("Ignorées  : %d\n", summary.Skipped)
	for _, e := range summary.Errors {
		fmt.Printf("  - %s\n", e)
	}
}
