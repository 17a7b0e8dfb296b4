// devtoken mints credentials for local development: a signed bearer token, or a
// redis backed session token. With -seed it also stores a small catalog for the user.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/gymsessions/internal/auth"
	"github.com/2beens/gymsessions/internal/config"
	"github.com/2beens/gymsessions/internal/db"
	"github.com/2beens/gymsessions/internal/workouts/catalog"
)

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	userIDFlag := flag.String("user", "", "user id (uuid), a new one is generated if empty")
	mode := flag.String("mode", "jwt", "token kind [jwt | session]")
	ttl := flag.Duration("ttl", 24*time.Hour, "token validity")
	seed := flag.Bool("seed", false, "store exercise definitions, a template and a location for the user")
	flag.Parse()

	userID := uuid.New()
	if *userIDFlag != "" {
		parsed, err := uuid.Parse(*userIDFlag)
		if err != nil {
			log.Fatalf("invalid user id [%s]: %s", *userIDFlag, err)
		}
		userID = parsed
	}

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %s", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	token, err := mintToken(ctx, cfg, *mode, userID, *ttl)
	if err != nil {
		log.Fatalf("mint %s token: %s", *mode, err)
	}

	fmt.Printf("user:  %s\n", userID)
	fmt.Printf("token: %s\n", token)

	if *seed {
		if err := seedCatalog(ctx, cfg, userID); err != nil {
			log.Fatalf("seed catalog: %s", err)
		}
	}
}

func mintToken(ctx context.Context, cfg *config.Config, mode string, userID uuid.UUID, ttl time.Duration) (string, error) {
	switch mode {
	case "jwt":
		return auth.NewToken(os.Getenv("GYMSESSIONS_JWT_SECRET"), userID, time.Now(), ttl)
	case "session":
		rdb := redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
			Password: os.Getenv("GYMSESSIONS_REDIS_PASS"),
		})
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Warnf("close redis client: %s", err)
			}
		}()
		return auth.NewSessionStore(ttl, rdb).Create(ctx, userID, time.Now())
	default:
		return "", fmt.Errorf("unknown mode: %s", mode)
	}
}

func seedCatalog(ctx context.Context, cfg *config.Config, userID uuid.UUID) error {
	pool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:     cfg.PostgresHost,
		DBPort:     cfg.PostgresPort,
		DBName:     cfg.PostgresDBName,
		DBUser:     os.Getenv("GYMSESSIONS_DB_USER"),
		DBPassword: os.Getenv("GYMSESSIONS_DB_PASS"),
	})
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		return err
	}

	definitions := []catalog.ExerciseDefinition{
		{Name: "Back Squat", ImplementType: catalog.ImplementBarbell, ExerciseType: catalog.ExerciseWeightReps},
		{Name: "Pull Up", ImplementType: catalog.ImplementBodyweight, ExerciseType: catalog.ExerciseReps},
		{Name: "Plank", ImplementType: catalog.ImplementBodyweight, ExerciseType: catalog.ExerciseDuration},
		{Name: "Rowing", ImplementType: catalog.ImplementMachine, ExerciseType: catalog.ExerciseDistanceDuration},
	}

	return db.InTx(ctx, pool, func(tx pgx.Tx) error {
		repo := catalog.NewRepo(tx)

		ids := make([]int, 0, len(definitions))
		for i := range definitions {
			definitions[i].UserID = userID
			if err := repo.AddExerciseDefinition(ctx, &definitions[i]); err != nil {
				return err
			}
			ids = append(ids, definitions[i].ID)
			fmt.Printf("exercise definition: %d %s\n", definitions[i].ID, definitions[i].Name)
		}

		template := &catalog.Template{UserID: userID, Name: "Full Body"}
		if err := repo.AddTemplate(ctx, template, ids); err != nil {
			return err
		}
		fmt.Printf("template: %d %s\n", template.ID, template.Name)

		location := &catalog.Location{UserID: userID, Name: gofakeit.Company() + " Gym"}
		if err := repo.AddLocation(ctx, location); err != nil {
			return err
		}
		fmt.Printf("location: %d %s\n", location.ID, location.Name)

		return nil
	})
}
