// Copyright © 2024 The ELPS authors

package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tablesSource = `package bank;

class Account {
    @Subtyping("Id") String owner;
    void transfer(@Subtyping("Raw") String input, int n) {
        @Subtyping("Clean") String out;
        String plain;
    }
    Account() {}
}
`

func runTables(t *testing.T, args []string, stdin string) (string, string, int) {
	t.Helper()
	cmd := TablesCommand(WithViper(viper.New()), WithStdin(strings.NewReader(stdin)))
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	code := exitCode(cmd.Execute(), &stderr)
	return stdout.String(), stderr.String(), code
}

func TestTablesCommand_Text(t *testing.T) {
	stdout, stderr, code := runTables(t, nil, tablesSource)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, `<stdin>
  fields (1)
    bank.Account.owner: Id
  params (1)
    bank.Account.transfer.input: Raw
  method bank.Account.transfer
    params (1)
      input: Raw
    locals (1)
      out: Clean
  method bank.Account.<init>
    params (0)
    locals (0)
`, stdout)
}

func TestTablesCommand_File(t *testing.T) {
	path := writeTempJava(t, t.TempDir(), "Account.java", tablesSource)
	stdout, _, code := runTables(t, []string{path}, "")
	assert.Equal(t, 0, code)
	assert.True(t, strings.HasPrefix(stdout, path+"\n"))
}

func TestTablesCommand_JSON(t *testing.T) {
	stdout, stderr, code := runTables(t, []string{"--json"}, tablesSource)
	require.Equal(t, 0, code, stderr)

	var out struct {
		File    string `json:"file"`
		Methods []struct {
			Class  string `json:"class"`
			Method string `json:"method"`
		} `json:"methods"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, "<stdin>", out.File)
	require.Len(t, out.Methods, 2)
	assert.Equal(t, "bank.Account", out.Methods[0].Class)
	assert.Equal(t, "transfer", out.Methods[0].Method)
	assert.Equal(t, "<init>", out.Methods[1].Method)
}

func TestTablesCommand_Errors(t *testing.T) {
	_, stderr, code := runTables(t, nil, `class C { @Subtyping(1) int f; }`)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "malformed subtyping annotation")
	assert.Contains(t, stderr, "--> <stdin>:1:11")

	_, stderr, code = runTables(t, []string{"A.java", "B.java"}, "")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "accepts at most 1 arg(s)")
}
