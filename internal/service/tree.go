package service

import "github.com/explorevent/explorevent/internal/models"

// buildCommentTree собирает дерево ответов из плоского списка комментариев.
//
// Вход должен быть упорядочен по created_at ASC — тогда и корни, и ответы
// внутри каждого узла сохраняют порядок создания. Корень — комментарий с
// пустым ReplyToID. Комментарий, чей родитель отсутствует во входе (сирота
// после каскадного удаления), в дерево не попадает.
func buildCommentTree(flat []models.Comment) []*models.CommentNode {
	nodes := make(map[string]*models.CommentNode, len(flat))
	for i := range flat {
		nodes[flat[i].ID] = &models.CommentNode{Comment: flat[i]}
	}

	roots := make([]*models.CommentNode, 0, len(flat))
	for i := range flat {
		node := nodes[flat[i].ID]

		if flat[i].ReplyToID == "" {
			roots = append(roots, node)
			continue
		}

		if parent, ok := nodes[flat[i].ReplyToID]; ok {
			parent.Replies = append(parent.Replies, node)
		}
	}

	return roots
}
