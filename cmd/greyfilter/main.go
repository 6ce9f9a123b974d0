package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/linyows/greyfilter"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
	builtBy = ""
)

type options struct {
	redis    string
	storage  string
	metrics  string
	logLevel log.Level
	version  bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("greyfilter", flag.ContinueOnError)
	fs.SetOutput(stderr)

	o := &options{}
	level := fs.String("log-level", "trace", "log level: panic, fatal, error, warn, info, debug, trace")
	fs.StringVar(&o.redis, "redis", "", "HOST:PORT|/SOCKET of the decision store")
	fs.StringVar(&o.storage, "storage", "", "comma separated decision audit storages from: mysql, sqlite, file, slack")
	fs.StringVar(&o.metrics, "metrics", "", "listen address for prometheus metrics")
	fs.BoolVar(&o.version, "version", false, "show build version")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	if o.version {
		return o, nil
	}
	if len(o.redis) == 0 {
		fs.Usage()
		return nil, errors.New("missing required option -redis")
	}

	var err error
	o.logLevel, err = log.ParseLevel(*level)
	if err != nil {
		return nil, err
	}

	return o, nil
}

func hooks(storage string) ([]greyfilter.Hook, error) {
	var hs []greyfilter.Hook
	if len(storage) == 0 {
		return hs, nil
	}

	for _, name := range strings.Split(storage, ",") {
		switch strings.TrimSpace(name) {
		case "mysql":
			hs = append(hs, &greyfilter.HookMysql{})
		case "sqlite":
			hs = append(hs, &greyfilter.HookSqlite{})
		case "file":
			hs = append(hs, &greyfilter.HookFile{})
		case "slack":
			hs = append(hs, &greyfilter.HookSlack{})
		default:
			return nil, fmt.Errorf("unknown storage: %q", name)
		}
	}

	return hs, nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	o, err := parseFlags(args, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	if o.version {
		fmt.Fprintln(os.Stderr, buildVersion(version, commit, date, builtBy))
		return 0
	}

	hs, err := hooks(o.storage)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	log.SetOutput(os.Stderr)
	log.SetLevel(o.logLevel)

	ropts, err := greyfilter.RedisOptions(o.redis)
	if err != nil {
		log.WithError(err).Error("Bad decision store address")
		return 2
	}

	hardening(promises(ropts, o))

	rds := redis.NewClient(ropts)
	defer rds.Close()

	if err := rds.Ping(context.Background()).Err(); err != nil {
		log.WithError(err).WithField("redis", o.redis).Error("Couldn't reach decision store")
		return 1
	}

	if len(o.metrics) > 0 {
		srv, err := greyfilter.ServeMetrics(o.metrics)
		if err != nil {
			log.WithError(err).Error("Couldn't listen for metrics")
			return 1
		}
		defer srv.Close()
	}

	s := &greyfilter.Server{
		Oracle: greyfilter.NewRedisOracle(rds),
		Hooks:  hs,
	}
	if err := s.Start(); err != nil {
		log.WithError(err).Error("Couldn't serve filter protocol")
		return 1
	}

	return 0
}

func buildVersion(version, commit, date, builtBy string) string {
	var result = version
	if commit != "" {
		result = fmt.Sprintf("%s\ncommit: %s", result, commit)
	}
	if date != "" {
		result = fmt.Sprintf("%s\nbuilt at: %s", result, date)
	}
	if builtBy != "" {
		result = fmt.Sprintf("%s\nbuilt by: %s", result, builtBy)
	}
	return result
}
