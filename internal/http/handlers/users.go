package handlers

import (
	"database/sql"
	"net/http"
	"strings"

	intconfig "univtours/internal/config"
	"univtours/internal/domain/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// GET /api/users
func GetUsers(c *gin.Context) {
	rows, err := intconfig.DB.Query(`SELECT id, name, email, role, created_at FROM users ORDER BY id`)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "échec de la requête utilisateurs", err)
		return
	}
	defer rows.Close()

	out := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.CreatedAt); err != nil {
			RespondError(c, http.StatusInternalServerError, "échec de lecture utilisateur", err)
			return
		}
		out = append(out, u)
	}
	c.JSON(http.StatusOK, gin.H{"users": out})
}

// GET /api/users/:id
func GetUserByID(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	var u models.User
	err := intconfig.DB.QueryRow(`SELECT id, name, email, role, created_at FROM users WHERE id=?`, id).
		Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.CreatedAt)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "utilisateur introuvable"})
		return
	}
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "échec de la requête utilisateur", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

type updateUserRequest struct {
	Name     string `json:"name"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

// PUT /api/users/:id
func UpdateUser(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	var req updateUserRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	sets := []string{}
	args := []any{}
	if strings.TrimSpace(req.Name) != "" {
		sets = append(sets, "name=?")
		args = append(args, strings.TrimSpace(req.Name))
	}
	if strings.TrimSpace(req.Role) != "" {
		sets = append(sets, "role=?")
		args = append(args, strings.TrimSpace(req.Role))
	}
	if req.Password != "" {
		if len(req.Password) < 8 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "mot de passe de 8 caractères minimum"})
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			RespondError(c, http.StatusInternalServerError, "échec du hachage du mot de passe", err)
			return
		}
		sets = append(sets, "password_hash=?")
		args = append(args, string(hash))
	}
	if len(sets) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "aucun champ à modifier"})
		return
	}
	args = append(args, id)

	if _, err := intconfig.DB.Exec(`UPDATE users SET `+strings.Join(sets, ",")+` WHERE id=?`, args...); err != nil {
		RespondError(c, http.StatusInternalServerError, "échec de mise à jour utilisateur", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "utilisateur mis à jour"})
}

// DELETE /api/users/:id
func DeleteUser(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	res, err := intconfig.DB.Exec(`DELETE FROM users WHERE id=?`, id)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "échec de suppression utilisateur", err)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "utilisateur introuvable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "utilisateur supprimé"})
}
