// Command console is a thin REPL demonstrating the dispatcher end-to-end:
// a small tree of example commands parsed and executed against lines read
// from stdin.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/discord-gophers/dispatch"
)

func main() {
	prompt := flag.String("prompt", "> ", "prompt string printed before each line read")
	flag.Parse()

	log := logrus.New()

	var d dispatch.Dispatcher
	registerCommands(&d, log)
	d.SetConsumer(func(ctx *dispatch.CommandContext, success bool, result int32) {
		log.WithFields(logrus.Fields{
			"input":   ctx.Input,
			"success": success,
			"result":  result,
		}).Debug("command result")
	})

	cache := dispatch.NewParseCache(256)

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print(*prompt)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			run(&d, cache, log, line)
		}
		fmt.Print(*prompt)
	}
}

func run(d *dispatch.Dispatcher, cache *dispatch.ParseCache, log *logrus.Logger, line string) {
	ctx := context.Background()
	parse := cache.Parse(d, ctx, line)

	if parse.Reader.CanRead() {
		log.WithFields(logrus.Fields{
			"input":  line,
			"cursor": parse.Reader.Cursor,
		}).Warn("command did not parse completely")
		return
	}

	var forkTally int
	for c := parse.Context; c != nil; c = c.Child {
		if c.Forks {
			forkTally++
		}
	}

	result, err := d.Execute(parse)
	if err != nil {
		log.WithFields(logrus.Fields{
			"input": line,
			"error": err,
		}).Error("command failed")
		return
	}

	entry := log.WithFields(logrus.Fields{"input": line, "result": result})
	if forkTally > 0 {
		entry = entry.WithField("forks", forkTally)
	}
	entry.Info("command executed")
}

// registerCommands builds a small example tree: "echo <word>", "say
// <phrase>", "sum <a> <b>", and "as <name> ..." redirecting back to root
// (a forked execution-as demo, the same shape brigadier itself ships as a
// worked example).
func registerCommands(d *dispatch.Dispatcher, log *logrus.Logger) {
	root := d.Register(dispatch.Literal("echo").
		Then(dispatch.Argument("word", dispatch.StringWord).
			Executes(dispatch.CommandFunc(func(c *dispatch.CommandContext) (int32, error) {
				fmt.Println(c.String("word"))
				return 0, nil
			}))))
	_ = root

	d.Register(dispatch.Literal("say").
		Then(dispatch.Argument("phrase", dispatch.StringPhrase).
			Executes(dispatch.CommandFunc(func(c *dispatch.CommandContext) (int32, error) {
				fmt.Println(c.String("phrase"))
				return 0, nil
			}))))

	d.Register(dispatch.Literal("sum").
		Then(dispatch.Argument("a", dispatch.Int).
			Then(dispatch.Argument("b", dispatch.Int).
				Executes(dispatch.CommandFunc(func(c *dispatch.CommandContext) (int32, error) {
					sum := int32(c.Int("a") + c.Int("b"))
					fmt.Println(sum)
					return sum, nil
				})))))

	d.Register(dispatch.Literal("as").
		Then(dispatch.Argument("name", dispatch.StringWord).
			Fork(&d.Root, dispatch.SingleRedirectModifier(func(c *dispatch.CommandContext) (context.Context, error) {
				return c.Context, nil
			}))))

	d.Register(dispatch.Literal("help").
		Executes(dispatch.CommandFunc(func(c *dispatch.CommandContext) (int32, error) {
			usage := d.AllUsage(c, &d.Root, true)
			for _, u := range usage {
				fmt.Println(u)
			}
			return int32(len(usage)), nil
		})))
}
