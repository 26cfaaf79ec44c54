package jwt_test

import (
	"testing"

	"github.com/jhoicas/bodegas-api/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret-key-for-unit-tests"

func TestGenerateAndParse(t *testing.T) {
	tok, err := jwt.Generate(secret, "u-1", "Ana", jwt.RoleBodeguero, "bodegas-test", 60)
	require.NoError(t, err)

	claims, err := jwt.Parse(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, jwt.RoleBodeguero, claims.Role)
	assert.Equal(t, "Ana", claims.Operator())
}

func TestOperator_SinNombreUsaID(t *testing.T) {
	c := &jwt.Claims{UserID: "u-2"}
	assert.Equal(t, "u-2", c.Operator())
}

func TestParse_Expirado(t *testing.T) {
	tok, err := jwt.Generate(secret, "u-1", "", jwt.RoleAdmin, "bodegas-test", -1)
	require.NoError(t, err)
	_, err = jwt.Parse(secret, tok)
	assert.Error(t, err)
}

func TestParse_SecretIncorrecto(t *testing.T) {
	tok, err := jwt.Generate(secret, "u-1", "", jwt.RoleAdmin, "bodegas-test", 60)
	require.NoError(t, err)
	_, err = jwt.Parse("otro-secret", tok)
	assert.Error(t, err)
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := jwt.Generate("", "u-1", "", jwt.RoleAdmin, "x", 60)
	assert.Error(t, err)
}
