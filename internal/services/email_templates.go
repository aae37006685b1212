package services

const invitationEmailHTML = `<!DOCTYPE html>
<html>
<head>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif, "Apple Color Emoji", "Segoe UI Emoji", "Segoe UI Symbol"; line-height: 1.6; color: #1f2937; background-color: #f0fdf4; margin: 0; padding: 20px; }
.container { padding: 20px; max-width: 600px; margin: 20px auto; background-color: #ffffff; border: 1px solid #bbf7d0; border-radius: 8px; }
.header { font-size: 24px; font-weight: bold; color: #15803d; margin-bottom: 15px; }
.content { padding: 30px; }
.button { display: inline-block; background-color: #15803d; color: #ffffff; padding: 12px 24px; border-radius: 5px; text-decoration: none; font-weight: bold; margin: 20px 0; }
.footer { margin-top: 20px; font-size: 12px; color: #6b7280; text-align: center; }
p { margin-bottom: 1em; }
</style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>You have been invited</h1>
    </div>
    <div class="content">
      <p>%s has invited you to move into <strong>%s</strong> (%s).</p>
      <p>Follow the link below to create your tenant account and accept the invitation. The link can be used once and expires on %s.</p>
      <p><a class="button" href="%s">Accept invitation</a></p>
      <p>If you were not expecting this, you can safely ignore this email.</p>
    </div>
    <div class="footer">
      © %d Rentline. All rights reserved.
    </div>
  </div>
</body>
</html>`

const applicationDecisionEmailHTML = `<!DOCTYPE html>
<html>
<head>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif, "Apple Color Emoji", "Segoe UI Emoji", "Segoe UI Symbol"; line-height: 1.6; color: #1f2937; background-color: #f0fdf4; margin: 0; padding: 20px; }
.container { padding: 20px; max-width: 600px; margin: 20px auto; background-color: #ffffff; border: 1px solid #bbf7d0; border-radius: 8px; }
.header { font-size: 24px; font-weight: bold; color: #15803d; margin-bottom: 15px; }
.content { padding: 30px; }
.footer { margin-top: 20px; font-size: 12px; color: #6b7280; text-align: center; }
p { margin-bottom: 1em; }
blockquote { border-left: 3px solid #bbf7d0; margin: 1em 0; padding-left: 12px; color: #374151; }
</style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>%s</h1>
    </div>
    <div class="content">
      <p>Hi %s,</p>
      <p>%s</p>
      %s
    </div>
    <div class="footer">
      © %d Rentline. All rights reserved.
    </div>
  </div>
</body>
</html>`
