package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/domain"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/port"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/infra/config"
	redisinfra "github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/infra/redis"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/infra/security"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/repository"
	postgresrepo "github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/repository/postgres"
	redisrepo "github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/repository/redis"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/usecase"
)

const seedPasswordEnv = "DEVCLUB_SEED_ADMIN_PASSWORD"

func newHasher(cfg config.PasswordSettings) (*security.PasswordHasher, error) {
	return security.NewPasswordHasher(security.HasherConfig{
		Algorithm:         cfg.Algorithm,
		BcryptCost:        cfg.BcryptCost,
		Argon2Memory:      cfg.Argon2Memory,
		Argon2Iterations:  cfg.Argon2Iterations,
		Argon2Parallelism: cfg.Argon2Parallelism,
	})
}

// readPassword prefers the flag, then the environment, then a terminal prompt.
func readPassword(flagValue string, in io.Reader, out io.Writer) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if env := os.Getenv(seedPasswordEnv); env != "" {
		return env, nil
	}
	f, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return "", fmt.Errorf("password required: pass --password or set %s", seedPasswordEnv)
	}

	fmt.Fprint(out, "Password: ")
	first, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	fmt.Fprint(out, "Confirm password: ")
	second, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read confirmation: %w", err)
	}
	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}

// ---------- seed-admin ----------

type adminSeed struct {
	Email    string
	FullName string
	Password string
	Super    bool
}

// seedAdmin creates the admin unless one with the same email exists.
// It reports whether a row was written.
func seedAdmin(ctx context.Context, admins port.AdminRepository, hasher port.PasswordHasher, policy *security.PasswordPolicy, seed adminSeed) (domain.Admin, bool, error) {
	email := strings.ToLower(strings.TrimSpace(seed.Email))
	if !strings.Contains(email, "@") {
		return domain.Admin{}, false, fmt.Errorf("invalid email address %q: %w", seed.Email, domain.ErrValidation)
	}

	existing, err := admins.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return existing.Sanitized(), false, nil
	case !errors.Is(err, repository.ErrNotFound):
		return domain.Admin{}, false, fmt.Errorf("lookup admin: %w", err)
	}

	if err := policy.Validate(seed.Password, email, seed.FullName); err != nil {
		return domain.Admin{}, false, err
	}
	hash, err := hasher.Hash(seed.Password)
	if err != nil {
		return domain.Admin{}, false, fmt.Errorf("hash password: %w", err)
	}

	created, err := admins.Create(ctx, domain.Admin{
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(seed.FullName),
		IsSuperAdmin: seed.Super,
	})
	if err != nil {
		return domain.Admin{}, false, fmt.Errorf("create admin: %w", err)
	}
	return created.Sanitized(), true, nil
}

func newSeedAdminCmd() *cobra.Command {
	var (
		seed     adminSeed
		password string
	)

	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create an administrator account",
		Example: `  DEVCLUB_SEED_ADMIN_PASSWORD=... devclubctl seed-admin --email admin@devclub.dz --name "Club Admin" --super
  devclubctl seed-admin --email admin@devclub.dz   # prompts for password`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := readPassword(password, cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			seed.Password = pw

			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			hasher, err := newHasher(rt.cfg.Password)
			if err != nil {
				return err
			}
			admins := postgresrepo.NewAdminRepository(rt.pool)
			policy := security.NewPasswordPolicy(0, rt.cfg.Password.MinScore)

			admin, created, err := seedAdmin(cmd.Context(), admins, hasher, policy, seed)
			if err != nil {
				return err
			}
			if !created {
				fmt.Fprintf(cmd.OutOrStdout(), "admin %s already exists (id %d)\n", admin.Email, admin.ID)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (id %d)\n", admin.Email, admin.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&seed.Email, "email", "", "admin email address (required)")
	cmd.Flags().StringVar(&seed.FullName, "name", "", "admin display name")
	cmd.Flags().BoolVar(&seed.Super, "super", false, "grant super admin")
	cmd.Flags().StringVar(&password, "password", "", "admin password (falls back to "+seedPasswordEnv+")")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

// ---------- seed-reference ----------

// referenceFile is the YAML layout accepted by seed-reference.
type referenceFile struct {
	Cities    []domain.City `yaml:"cities"`
	Faculties []struct {
		Name        string   `yaml:"name"`
		Departments []string `yaml:"departments"`
	} `yaml:"faculties"`
}

func parseReferenceFile(r io.Reader) (referenceFile, error) {
	var file referenceFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return referenceFile{}, fmt.Errorf("decode reference file: %w", err)
	}
	return file, nil
}

type referenceSeeder interface {
	ImportCities(ctx context.Context, cities []domain.City) (int, error)
	Faculties(ctx context.Context) ([]domain.Faculty, error)
	CreateFaculty(ctx context.Context, name string) (domain.Faculty, error)
	DepartmentsByFaculty(ctx context.Context, facultyID int64) ([]domain.Department, error)
	CreateDepartment(ctx context.Context, name string, facultyID int64) (domain.Department, error)
}

type seedSummary struct {
	Cities      int
	Faculties   int
	Departments int
}

// seedReference upserts cities and adds faculties and departments missing by name.
func seedReference(ctx context.Context, svc referenceSeeder, file referenceFile) (seedSummary, error) {
	var summary seedSummary

	if len(file.Cities) > 0 {
		n, err := svc.ImportCities(ctx, file.Cities)
		if err != nil {
			return summary, err
		}
		summary.Cities = n
	}

	existing, err := svc.Faculties(ctx)
	if err != nil {
		return summary, err
	}
	byName := make(map[string]int64, len(existing))
	for _, f := range existing {
		byName[strings.ToLower(f.FacultyName)] = f.ID
	}

	for _, f := range file.Faculties {
		name := strings.TrimSpace(f.Name)
		id, ok := byName[strings.ToLower(name)]
		if !ok {
			created, err := svc.CreateFaculty(ctx, name)
			if err != nil {
				return summary, fmt.Errorf("faculty %q: %w", name, err)
			}
			id = created.ID
			byName[strings.ToLower(name)] = id
			summary.Faculties++
		}

		departments, err := svc.DepartmentsByFaculty(ctx, id)
		if err != nil {
			return summary, err
		}
		have := make(map[string]bool, len(departments))
		for _, d := range departments {
			have[strings.ToLower(d.DepartmentName)] = true
		}
		for _, dept := range f.Departments {
			dept = strings.TrimSpace(dept)
			if have[strings.ToLower(dept)] {
				continue
			}
			if _, err := svc.CreateDepartment(ctx, dept, id); err != nil {
				return summary, fmt.Errorf("department %q: %w", dept, err)
			}
			have[strings.ToLower(dept)] = true
			summary.Departments++
		}
	}

	return summary, nil
}

func newSeedReferenceCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:     "seed-reference",
		Short:   "Load cities, faculties and departments from a YAML file",
		Example: `  devclubctl seed-reference --file reference.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open reference file: %w", err)
			}
			defer f.Close()

			file, err := parseReferenceFile(f)
			if err != nil {
				return err
			}

			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			var cache port.Cache
			if client, err := redisinfra.NewClient(cmd.Context(), rt.cfg.Redis, rt.logger); err != nil {
				rt.logger.Warn("redis unavailable, cached reference lists will expire on their own", zap.Error(err))
			} else {
				defer client.Close()
				cache = redisrepo.NewCache(client.Client(), rt.cfg.ReferenceCache.Prefix)
			}

			svc := usecase.NewReferenceService(postgresrepo.NewReferenceRepository(rt.pool), cache, rt.cfg.ReferenceCache.TTL, rt.logger)
			summary, err := seedReference(cmd.Context(), svc, file)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cities upserted: %d, faculties added: %d, departments added: %d\n",
				summary.Cities, summary.Faculties, summary.Departments)
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "file", "", "reference YAML file (required)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// ---------- hash-password ----------

func newHashPasswordCmd() *cobra.Command {
	var (
		password  string
		algorithm string
		cost      int
	)

	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Print a password hash for manual fixes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := readPassword(password, cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			cfg := security.DefaultHasherConfig()
			cfg.Algorithm = algorithm
			if cost > 0 {
				cfg.BcryptCost = cost
			}
			hasher, err := security.NewPasswordHasher(cfg)
			if err != nil {
				return err
			}
			hash, err := hasher.Hash(pw)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "password to hash (falls back to "+seedPasswordEnv+")")
	cmd.Flags().StringVar(&algorithm, "algorithm", security.AlgorithmBcrypt, "bcrypt or argon2id")
	cmd.Flags().IntVar(&cost, "cost", 0, "bcrypt cost (default from the hasher)")
	return cmd
}
