package staticsvr

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Env keys, each one is the default of the flag with the same suffix.
const (
	EnvDir    = "STATICSVR_DIR"
	EnvHost   = "STATICSVR_HOST"
	EnvPort   = "STATICSVR_PORT"
	EnvLog    = "STATICSVR_LOG"
	EnvMetric = "STATICSVR_METRIC"
)

// ParseFlags builds a Config from command line args (without the program
// name). Precedence is flag, then env (optionally loaded from envFile),
// then NewConfig(ExecutableDir()). A missing envFile is not an error.
func ParseFlags(args []string, envFile string, output io.Writer) (Config, error) {
	if envFile != "" {
		err := godotenv.Load(envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %v: %w", envFile, err)
		}
	}

	defaultDir, err := ExecutableDir()
	if err != nil {
		defaultDir = "."
	}
	c := NewConfig(defaultDir)
	if c.Dir, err = checkEnv(EnvDir, c.Dir); err != nil {
		return Config{}, err
	}
	if c.Host, err = checkEnv(EnvHost, c.Host); err != nil {
		return Config{}, err
	}
	if c.Port, err = checkEnv(EnvPort, c.Port); err != nil {
		return Config{}, err
	}
	if c.IsLog, err = checkEnv(EnvLog, c.IsLog); err != nil {
		return Config{}, err
	}
	if c.IsMetric, err = checkEnv(EnvMetric, c.IsMetric); err != nil {
		return Config{}, err
	}

	flags := flag.NewFlagSet("start_server", flag.ContinueOnError)
	if output != nil {
		flags.SetOutput(output)
	}
	flags.StringVar(&c.Dir, "dir", c.Dir, "document root, defaults to the directory containing this program. Env "+EnvDir)
	flags.StringVar(&c.Host, "host", c.Host, "host to bind, empty means all interfaces. Env "+EnvHost)
	flags.IntVar(&c.Port, "port", c.Port, "TCP port to listen on. Env "+EnvPort)
	flags.BoolVar(&c.IsLog, "log", c.IsLog, "true/false, log every request. Env "+EnvLog)
	flags.BoolVar(&c.IsMetric, "metric", c.IsMetric, "true/false, count requests and serve them on "+MetricPath+". Env "+EnvMetric)
	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}
	if flags.NArg() > 0 {
		return Config{}, fmt.Errorf("unexpected arguments: %v", flags.Args())
	}
	return c, nil
}

// checkEnv returns the value of env key converted to the type of v,
// or v if the key is not set
func checkEnv[T string | int | bool](key string, v T) (T, error) {
	val, ok := os.LookupEnv(key)
	if !ok {
		return v, nil
	}
	var ret any
	switch any(v).(type) {
	case string:
		ret = val
	case int:
		n, err := strconv.Atoi(val)
		if err != nil {
			return v, fmt.Errorf("env %v=%q: not an int", key, val)
		}
		ret = n
	case bool:
		b, err := strconv.ParseBool(val)
		if err != nil {
			return v, fmt.Errorf("env %v=%q: not a bool", key, val)
		}
		ret = b
	}
	return ret.(T), nil
}

// ExecutableDir returns the directory containing the running program,
// symlinks resolved
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}
