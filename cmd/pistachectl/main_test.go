package main

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"testing"

	categorydomain "github.com/smallbiznis/pistache/internal/category/domain"
	productsizedomain "github.com/smallbiznis/pistache/internal/productsize/domain"
	"github.com/smallbiznis/pistache/internal/server/servertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, env *servertest.Env, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--server", env.Server.URL}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSizesCommands(t *testing.T) {
	env := servertest.New(t)
	product := env.SeedProduct(t, "Macacão", "259.00")
	id := strconv.FormatInt(product.ID, 10)

	out, err := run(t, env, "", "sizes", "add", id, "M", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "Tamanho adicionado com sucesso!")

	_, err = run(t, env, "", "sizes", "add", id, "M", "1")
	require.EqualError(t, err, `Tamanho "M" já existe para este produto`)

	_, err = run(t, env, "", "sizes", "edit", id, "M", "--stock", "0")
	require.NoError(t, err)
	var stored productsizedomain.ProductSize
	require.NoError(t, env.DB.Where("size = ?", "M").First(&stored).Error)
	assert.False(t, stored.IsActive)

	out, err = run(t, env, "n\n", "sizes", "delete", id, "M")
	require.NoError(t, err)
	assert.Contains(t, out, `"M"`)
	var count int64
	env.DB.Model(&productsizedomain.ProductSize{}).Count(&count)
	assert.Equal(t, int64(1), count)

	_, err = run(t, env, "", "sizes", "delete", id, "M", "--yes")
	require.NoError(t, err)
	env.DB.Model(&productsizedomain.ProductSize{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestCategoriesSetCommand(t *testing.T) {
	env := servertest.New(t)
	product := env.SeedProduct(t, "Bolsa", "320.00")
	for _, name := range []string{"Bolsas", "Couro", "Festa"} {
		c := categorydomain.Category{Name: name, Slug: strings.ToLower(name), CreatedAt: servertest.Now}
		require.NoError(t, env.DB.Create(&c).Error)
	}
	id := strconv.FormatInt(product.ID, 10)

	out, err := run(t, env, "", "categories", "set", id, "1", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "add 1")
	assert.Contains(t, out, "add 2")

	out, err = run(t, env, "", "categories", "set", id, "2", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "add 3")
	assert.Contains(t, out, "remove 1")
	assert.Contains(t, out, "Couro")
	assert.NotContains(t, out, "Bolsas")
}

func TestProductAndLogsCommands(t *testing.T) {
	env := servertest.New(t)
	product := env.SeedProduct(t, "Colar", "89.90")
	id := strconv.FormatInt(product.ID, 10)

	out, err := run(t, env, "", "product", "update", id, "--price", "99.90", "--original-price", "120")
	require.NoError(t, err)
	assert.Contains(t, out, "Alterações salvas com sucesso!")
	assert.Contains(t, out, "Preço orig.: 120.00")

	_, err = run(t, env, "", "product", "show", "999")
	require.EqualError(t, err, "Produto não encontrado")

	out, err = run(t, env, "", "logs", "--date", "all")
	require.NoError(t, err)
	assert.Contains(t, out, "página 1")
}
