package staticsvr

import (
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestParseFlags_Default(t *testing.T) {
	c, err := ParseFlags(nil, "", io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	exeDir, err := ExecutableDir()
	if err != nil {
		t.Fatal(err)
	}
	if c.Dir != exeDir || c.Port != DefaultPort || c.Host != "" ||
		!c.IsLog || !c.IsMetric {
		t.Errorf("default config: %#v", c)
	}
}

func TestParseFlags_EnvAndFlags(t *testing.T) {
	t.Setenv(EnvPort, "9001")
	t.Setenv(EnvHost, "127.0.0.1")
	t.Setenv(EnvLog, "false")
	c, err := ParseFlags(nil, "", io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if c.Port != 9001 || c.Host != "127.0.0.1" || c.IsLog {
		t.Errorf("env config: %#v", c)
	}

	c, err = ParseFlags([]string{"-port", "9002", "-dir", "/srv/maps",
		"-metric=false"}, "", io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if c.Port != 9002 || c.Dir != "/srv/maps" || c.IsMetric || c.Host != "127.0.0.1" {
		t.Errorf("flag config: %#v", c)
	}
}

func TestParseFlags_EnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	err := os.WriteFile(envFile, []byte(EnvPort+"=9003\n"), 0o644)
	if err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvPort, "") // register cleanup of the key godotenv sets
	os.Unsetenv(EnvPort)
	c, err := ParseFlags(nil, envFile, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if r, e := c.Port, 9003; r != e {
		t.Errorf("port from env file: real %v, expected %v", r, e)
	}

	if _, err := ParseFlags(nil, filepath.Join(t.TempDir(), ".env"),
		io.Discard); err != nil {
		t.Errorf("missing env file: %v", err)
	}
}

func TestParseFlags_Errors(t *testing.T) {
	if _, err := ParseFlags([]string{"-port", "abc"}, "", io.Discard); err == nil {
		t.Error("expected error for -port abc")
	}
	if _, err := ParseFlags([]string{"extra"}, "", io.Discard); err == nil {
		t.Error("expected error for positional argument")
	}
	if _, err := ParseFlags([]string{"-h"}, "", io.Discard); !errors.Is(err, flag.ErrHelp) {
		t.Errorf("-h: real %v, expected %v", err, flag.ErrHelp)
	}
	t.Setenv(EnvPort, "eight thousand")
	if _, err := ParseFlags(nil, "", io.Discard); err == nil {
		t.Error("expected error for bad env port")
	}
}
