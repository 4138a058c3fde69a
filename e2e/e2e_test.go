package e2e

import (
	"context"
	"flag"
	"fmt"
	"os"
	"testing"

	"github.com/cucumber/godog"
	"github.com/cucumber/godog/colors"
)

var opts = godog.Options{
	Output: colors.Colored(os.Stdout),
	Format: "pretty",
	Paths:  []string{"features"},
}

func init() {
	godog.BindCommandLineFlags("godog.", &opts)
}

func TestFeatures(t *testing.T) {
	flag.Parse()
	opts.TestingT = t

	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options:             &opts,
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

func InitializeScenario(sc *godog.ScenarioContext) {
	holder := &contextHolder{}

	sc.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc, err := NewTestContext()
		if err != nil {
			return ctx, err
		}
		holder.TestContext = tc
		return ctx, nil
	})

	sc.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if holder.TestContext == nil {
			return ctx, nil
		}
		if err != nil {
			fmt.Printf("Scenario failed: %s\nLast Response: %s\n", sc.Name, string(holder.LastResponseBody))
		}
		holder.Close()
		return ctx, nil
	})

	RegisterSteps(sc, holder)
}

// contextHolder lets step definitions bound once per scenario see the
// TestContext created in Before.
type contextHolder struct {
	*TestContext
}
