package services

// Email template for a request status update
const requestSubmittedEmailTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #2196F3; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
        .content { background-color: #f9f9f9; padding: 30px; border: 1px solid #ddd; border-top: none; }
        .info-row { margin: 10px 0; padding: 10px; background-color: white; border-left: 3px solid #2196F3; }
        .label { font-weight: bold; color: #555; }
        .value { color: #333; }
        .button { display: inline-block; padding: 12px 30px; margin: 20px 10px 10px 0; background-color: #2196F3; color: white; text-decoration: none; border-radius: 5px; }
        .footer { text-align: center; padding: 20px; color: #777; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Onboarding Request Update</h1>
        </div>
        <div class="content">
            <p>An onboarding request you are handling has changed status.</p>

            <div class="info-row">
                <span class="label">Request ID:</span>
                <span class="value">{{.RequestID}}</span>
            </div>

            {{if .ApplicantName}}
            <div class="info-row">
                <span class="label">Applicant:</span>
                <span class="value">{{.ApplicantName}}</span>
            </div>
            {{end}}

            <div class="info-row">
                <span class="label">Status:</span>
                <span class="value">{{.StatusCode}}</span>
            </div>

            {{if .Comment}}
            <div class="info-row">
                <span class="label">Reviewer Comment:</span>
                <span class="value">{{.Comment}}</span>
            </div>
            {{end}}

            <div style="margin-top: 30px; text-align: center;">
                <a href="{{.RequestURL}}" class="button">View Request</a>
            </div>
        </div>
        <div class="footer">
            <p>Back Office - Onboarding</p>
            <p>Updated at: {{.Timestamp}}</p>
        </div>
    </div>
</body>
</html>
`

// Email template for a request sent back for corrections
const correctionRequiredEmailTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #FF9800; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
        .content { background-color: #f9f9f9; padding: 30px; border: 1px solid #ddd; border-top: none; }
        .info-row { margin: 10px 0; padding: 10px; background-color: white; border-left: 3px solid #FF9800; }
        .label { font-weight: bold; color: #555; }
        .value { color: #333; }
        .warning { background-color: #fff3cd; border-left: 3px solid #ffc107; padding: 15px; margin: 20px 0; border-radius: 5px; }
        .button { display: inline-block; padding: 12px 30px; margin: 20px 10px 10px 0; background-color: #FF9800; color: white; text-decoration: none; border-radius: 5px; }
        .footer { text-align: center; padding: 20px; color: #777; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Correction Required</h1>
        </div>
        <div class="content">
            <div class="warning">
                A reviewer has sent this request back. The file can be edited again until it is resubmitted.
            </div>

            <div class="info-row">
                <span class="label">Request ID:</span>
                <span class="value">{{.RequestID}}</span>
            </div>

            {{if .ApplicantName}}
            <div class="info-row">
                <span class="label">Applicant:</span>
                <span class="value">{{.ApplicantName}}</span>
            </div>
            {{end}}

            {{if .Comment}}
            <div class="info-row">
                <span class="label">Reviewer Comment:</span>
                <span class="value">{{.Comment}}</span>
            </div>
            {{end}}

            <div style="margin-top: 30px; text-align: center;">
                <a href="{{.RequestURL}}" class="button">Fix and Resubmit</a>
            </div>
        </div>
        <div class="footer">
            <p>Back Office - Onboarding</p>
            <p>Updated at: {{.Timestamp}}</p>
        </div>
    </div>
</body>
</html>
`

// Email template for an accepted request
const accountOpenedEmailTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #4CAF50; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
        .content { background-color: #f9f9f9; padding: 30px; border: 1px solid #ddd; border-top: none; }
        .info-row { margin: 10px 0; padding: 10px; background-color: white; border-left: 3px solid #4CAF50; }
        .label { font-weight: bold; color: #555; }
        .value { color: #333; }
        .success { background-color: #d4edda; border-left: 3px solid #28a745; padding: 15px; margin: 20px 0; border-radius: 5px; }
        .footer { text-align: center; padding: 20px; color: #777; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Account Opened</h1>
        </div>
        <div class="content">
            <div class="success">
                <strong>Good news!</strong> The onboarding request has been accepted and the account is open.
            </div>

            <div class="info-row">
                <span class="label">Request ID:</span>
                <span class="value">{{.RequestID}}</span>
            </div>

            {{if .ApplicantName}}
            <div class="info-row">
                <span class="label">Applicant:</span>
                <span class="value">{{.ApplicantName}}</span>
            </div>
            {{end}}

            {{if .Comment}}
            <div class="info-row">
                <span class="label">Reviewer Comment:</span>
                <span class="value">{{.Comment}}</span>
            </div>
            {{end}}

            <p style="margin-top: 20px;">
                No further action is required on this file.
            </p>
        </div>
        <div class="footer">
            <p>Back Office - Onboarding</p>
            <p>Timestamp: {{.Timestamp}}</p>
        </div>
    </div>
</body>
</html>
`

// Email template for a refused request
const requestRejectedEmailTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #f44336; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
        .content { background-color: #f9f9f9; padding: 30px; border: 1px solid #ddd; border-top: none; }
        .info-row { margin: 10px 0; padding: 10px; background-color: white; border-left: 3px solid #f44336; }
        .label { font-weight: bold; color: #555; }
        .value { color: #333; }
        .error { background-color: #f8d7da; border-left: 3px solid #dc3545; padding: 15px; margin: 20px 0; border-radius: 5px; }
        .footer { text-align: center; padding: 20px; color: #777; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Request Rejected</h1>
        </div>
        <div class="content">
            <div class="error">
                The onboarding request has been refused. The file is closed.
            </div>

            <div class="info-row">
                <span class="label">Request ID:</span>
                <span class="value">{{.RequestID}}</span>
            </div>

            {{if .ApplicantName}}
            <div class="info-row">
                <span class="label">Applicant:</span>
                <span class="value">{{.ApplicantName}}</span>
            </div>
            {{end}}

            {{if .Comment}}
            <div class="info-row">
                <span class="label">Refusal Reason:</span>
                <span class="value">{{.Comment}}</span>
            </div>
            {{end}}

            <p style="margin-top: 20px;">
                A new request must be opened if the client reapplies.
            </p>
        </div>
        <div class="footer">
            <p>Back Office - Onboarding</p>
            <p>Timestamp: {{.Timestamp}}</p>
        </div>
    </div>
</body>
</html>
`

// Email template reminding the agent about stale corrections
const correctionReminderEmailTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #9E9E9E; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
        .content { background-color: #f9f9f9; padding: 30px; border: 1px solid #ddd; border-top: none; }
        .info-row { margin: 10px 0; padding: 10px; background-color: white; border-left: 3px solid #9E9E9E; }
        .label { font-weight: bold; color: #555; }
        .value { color: #333; }
        .warning { background-color: #fff3cd; border-left: 3px solid #ffc107; padding: 15px; margin: 20px 0; border-radius: 5px; }
        .button { display: inline-block; padding: 12px 30px; margin: 20px 10px 10px 0; background-color: #9E9E9E; color: white; text-decoration: none; border-radius: 5px; }
        .footer { text-align: center; padding: 20px; color: #777; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Corrections Still Pending</h1>
        </div>
        <div class="content">
            <div class="warning">
                This request was sent back for corrections and has not been resubmitted yet.
            </div>

            <div class="info-row">
                <span class="label">Request ID:</span>
                <span class="value">{{.RequestID}}</span>
            </div>

            {{if .ApplicantName}}
            <div class="info-row">
                <span class="label">Applicant:</span>
                <span class="value">{{.ApplicantName}}</span>
            </div>
            {{end}}

            {{if .Comment}}
            <div class="info-row">
                <span class="label">Reviewer Comment:</span>
                <span class="value">{{.Comment}}</span>
            </div>
            {{end}}

            <div style="margin-top: 30px; text-align: center;">
                <a href="{{.RequestURL}}" class="button">Resume Editing</a>
            </div>
        </div>
        <div class="footer">
            <p>Back Office - Onboarding</p>
            <p>Waiting since: {{.Timestamp}}</p>
        </div>
    </div>
</body>
</html>
`
